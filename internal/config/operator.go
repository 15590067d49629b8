package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const (
	defaultProvider    = "powerdns"
	defaultServiceName = "powerdns"
	defaultPortName    = "api"
	defaultRegistryKey = "osm-config"
)

// OperatorConfig holds the DNS provider type, the logical service to
// resolve, the API key, and where the service registry blob is read from.
type OperatorConfig struct {
	Provider    string            `yaml:"provider"`
	ServiceName string            `yaml:"service_name"`
	PortName    string            `yaml:"port_name"`
	APIKey      string            `yaml:"api_key"`
	Registry    RegistryConfig    `yaml:"registry"`
	Settings    map[string]string `yaml:"settings"` // passed through to the provider
}

// RegistryConfig locates the service registry blob. File takes precedence
// over the ConfigMap reference.
type RegistryConfig struct {
	File      string `yaml:"file"`
	Namespace string `yaml:"namespace"`
	ConfigMap string `yaml:"configmap"`
	Key       string `yaml:"key"`
}

// LoadOperatorConfig reads the operator configuration from the path
// specified by the PDNS_OPERATOR_CONFIG environment variable, defaulting to
// "configs/pdns-operator.yaml".
func LoadOperatorConfig() (*OperatorConfig, error) {
	path := os.Getenv("PDNS_OPERATOR_CONFIG")
	if path == "" {
		path = "configs/pdns-operator.yaml"
	}
	return LoadOperatorConfigFromPath(path)
}

// LoadOperatorConfigFromPath reads the operator configuration from the
// given file path.
func LoadOperatorConfigFromPath(path string) (*OperatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading operator config file: %w", err)
	}

	var cfg OperatorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing operator config file: %w", err)
	}

	// Expand ${ENV_VAR} references.
	cfg.APIKey = os.ExpandEnv(cfg.APIKey)
	cfg.Registry.File = os.ExpandEnv(cfg.Registry.File)
	cfg.Registry.Namespace = os.ExpandEnv(cfg.Registry.Namespace)
	for k, v := range cfg.Settings {
		cfg.Settings[k] = os.ExpandEnv(v)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *OperatorConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.PortName == "" {
		c.PortName = defaultPortName
	}
	if c.Registry.Key == "" {
		c.Registry.Key = defaultRegistryKey
	}
}

// Validate checks that the required fields are present.
func (c *OperatorConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("operator config: missing required field 'api_key'")
	}
	if c.Registry.File == "" && c.Registry.ConfigMap == "" {
		return fmt.Errorf("operator config: one of 'registry.file' or 'registry.configmap' is required")
	}
	if c.Registry.ConfigMap != "" && c.Registry.Namespace == "" {
		return fmt.Errorf("operator config: 'registry.namespace' is required with 'registry.configmap'")
	}
	return nil
}

// ProviderSettings returns the settings map handed to the DNS provider
// factory for a server reachable at zonesURL.
func (c *OperatorConfig) ProviderSettings(zonesURL string) map[string]string {
	settings := make(map[string]string, len(c.Settings)+2)
	for k, v := range c.Settings {
		settings[k] = v
	}
	settings["base_url"] = zonesURL
	settings["api_key"] = c.APIKey
	return settings
}
