package config

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DB       int    `yaml:"db"`
	Url      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewRedisConfig enables the worker registry only when REDIS_ADDR is set.
func NewRedisConfig(lookup LookupFunc) *RedisConfig {
	return &RedisConfig{
		Enabled:  lookup.Get("REDIS_ADDR", "") != "",
		DB:       lookup.Int("REDIS_DB", 0),
		Url:      lookup.Get("REDIS_ADDR", "localhost:6379"),
		Password: lookup.Get("REDIS_PASSWORD", ""),
	}
}
