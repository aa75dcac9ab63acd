package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names the configuration profile an app runs with.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

// Config is the host application configuration.
type Config struct {
	Environment  Environment          `yaml:"environment"`
	Server       ServerConfig         `yaml:"server"`
	Logger       LoggerConfig         `yaml:"logger"`
	CORS         *CORSConfig          `yaml:"cors"`
	Auth         AuthConfig           `yaml:"auth"`
	Initializers map[string]yaml.Node `yaml:"initializers"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggerConfig selects the log level and format. A non-empty File adds a rolling log file.
type LoggerConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type AuthConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

type JWTConfig struct {
	Location JWTLocation `yaml:"location"`
}

// JWTLocation tells clients where the token travels: bearer, query or cookie.
type JWTLocation struct {
	From string `yaml:"from"`
	Name string `yaml:"name"`
}

// LoadConfig reads a YAML config file. ${VAR} references are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read config %q: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("app: load config %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML config document and fills defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("app: parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfig returns a development config with no initializer sections.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = Development
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}
	if c.Logger.MaxSize == 0 {
		c.Logger.MaxSize = 100
	}
}

// InitializerNode returns the raw section configured for the named initializer.
func (c *Config) InitializerNode(name string) (*yaml.Node, bool) {
	node, ok := c.Initializers[name]
	if !ok {
		return nil, false
	}
	return &node, true
}

// Initializer decodes the named initializer section into out and reports whether it exists.
func (c *Config) Initializer(name string, out interface{}) (bool, error) {
	node, ok := c.InitializerNode(name)
	if !ok {
		return false, nil
	}
	if err := node.Decode(out); err != nil {
		return true, fmt.Errorf("app: decode initializer %q: %w", name, err)
	}
	return true, nil
}
