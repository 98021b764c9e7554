package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fileTemplate mirrors Config with yaml tags, used only to render the
// default config file.
type fileTemplate struct {
	Anthropic struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"anthropic"`
	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
	} `yaml:"rate_limit"`
	Tokens struct {
		Free map[string]int64 `yaml:"free"`
		Pro  map[string]int64 `yaml:"pro"`
	} `yaml:"tokens"`
	Cache struct {
		Backend    string `yaml:"backend"`
		TTLHours   int    `yaml:"ttl_hours"`
		MaxEntries int    `yaml:"max_entries"`
		Path       string `yaml:"path"`
	} `yaml:"cache"`
	Retries struct {
		Max int `yaml:"max"`
	} `yaml:"retries"`
	Logging struct {
		DebugLog string `yaml:"debug_log"`
	} `yaml:"logging"`
}

// DefaultYAML renders the default configuration as a YAML document,
// suitable for writing an initial user config file.
func DefaultYAML() ([]byte, error) {
	var t fileTemplate
	t.Anthropic.APIKey = "${ANTHROPIC_API_KEY}"
	t.RateLimit.RequestsPerMinute = 30
	t.Cache.Backend = "memory"
	t.Cache.TTLHours = 24
	t.Cache.MaxEntries = 1000
	t.Cache.Path = DefaultCachePath()
	t.Retries.Max = 2

	out, err := yaml.Marshal(&t)
	if err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}

	header := []byte("# kaizen AI core configuration\n" +
		"# Values here are overridden by .kaizen.yaml in a project directory\n" +
		"# and by the ANTHROPIC_API_KEY environment variable.\n")
	return append(header, out...), nil
}
