package config

import "time"

type WorkerConfig struct {
	Queues            []string      `yaml:"queues"`
	Concurrency       int           `yaml:"concurrency"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	IdleDelay         time.Duration `yaml:"idle_delay"`
}

func NewWorkerConfig(lookup LookupFunc) *WorkerConfig {
	return &WorkerConfig{
		Queues:            lookup.List("FAKTORY_QUEUES", []string{"default"}),
		Concurrency:       lookup.Int("FAKTORY_CONCURRENCY", 1),
		HeartbeatInterval: lookup.Seconds("FAKTORY_HEARTBEAT_INTERVAL_SEC", 15*time.Second),
		IdleDelay:         lookup.Seconds("FAKTORY_IDLE_DELAY_SEC", time.Second),
	}
}

type HTTPConfig struct {
	// Port of the status server, 0 disables it
	Port int `yaml:"port"`
}

func NewHTTPConfig(lookup LookupFunc) *HTTPConfig {
	return &HTTPConfig{
		Port: lookup.Int("HTTP_PORT", 8082),
	}
}
