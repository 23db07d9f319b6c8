package config

import "time"

const (
	// ProviderEnv names the variable that holds the name of the target variable
	ProviderEnv     = "FAKTORY_PROVIDER"
	DefaultProvider = "FAKTORY_URL"
	DefaultTarget   = "tcp://localhost:7419"
)

// ResolveTarget picks the server target: explicit, else the variable named by
// FAKTORY_PROVIDER (FAKTORY_URL when unset), else DefaultTarget.
func ResolveTarget(explicit string, lookup LookupFunc) string {
	if explicit != "" {
		return explicit
	}
	provider := lookup.Get(ProviderEnv, DefaultProvider)
	return lookup.Get(provider, DefaultTarget)
}

type FaktoryConfig struct {
	Target                string        `yaml:"target"`
	TLS                   bool          `yaml:"tls"`
	TLSInsecureSkipVerify bool          `yaml:"tls_insecure_skip_verify"`
	Labels                []string      `yaml:"labels"`
	DialTimeout           time.Duration `yaml:"dial_timeout"`
	ReadTimeout           time.Duration `yaml:"read_timeout"`
	WriteTimeout          time.Duration `yaml:"write_timeout"`
}

func NewFaktoryConfig(lookup LookupFunc) *FaktoryConfig {
	return &FaktoryConfig{
		Target:                ResolveTarget("", lookup),
		TLS:                   lookup.Bool("FAKTORY_TLS"),
		TLSInsecureSkipVerify: lookup.Bool("FAKTORY_TLS_INSECURE_SKIP_VERIFY"),
		Labels:                lookup.List("FAKTORY_LABELS", []string{"golang"}),
		DialTimeout:           lookup.Seconds("FAKTORY_DIAL_TIMEOUT_SEC", 10*time.Second),
		ReadTimeout:           lookup.Seconds("FAKTORY_READ_TIMEOUT_SEC", 0),
		WriteTimeout:          lookup.Seconds("FAKTORY_WRITE_TIMEOUT_SEC", 0),
	}
}
