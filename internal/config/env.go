package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc reads one environment variable. OSLookup is the process
// environment; tests pass a map-backed function.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the process environment
var OSLookup LookupFunc = os.LookupEnv

// MapLookup serves variables from m
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func (l LookupFunc) get(key string) string {
	if l == nil {
		return ""
	}
	v, _ := l(key)
	return strings.TrimSpace(v)
}

func (l LookupFunc) Get(key, def string) string {
	if v := l.get(key); v != "" {
		return v
	}
	return def
}

func (l LookupFunc) Int(key string, def int) int {
	v, err := strconv.Atoi(l.get(key))
	if err != nil {
		return def
	}
	return v
}

func (l LookupFunc) Bool(key string) bool {
	v, err := strconv.ParseBool(l.get(key))
	return err == nil && v
}

// Seconds reads a whole number of seconds
func (l LookupFunc) Seconds(key string, def time.Duration) time.Duration {
	v, err := strconv.Atoi(l.get(key))
	if err != nil || v < 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

// List reads a comma separated list, dropping blanks
func (l LookupFunc) List(key string, def []string) []string {
	raw := l.get(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
