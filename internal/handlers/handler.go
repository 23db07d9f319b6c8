package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func ResponseError(w http.ResponseWriter, message string, code int) {
	ResponseWithJson(w, code, ErrorResponse{Error: message, Status: code})
}
