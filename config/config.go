package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jerry-desk/bridgecli/utils"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/ini.v1"
)

const (
	// ConfigEnvVar names an ini file to read when --config is not given
	ConfigEnvVar = "BRIDGECLI_CONFIG"

	KeyringService = "bridgecli"
	KeyringUser    = "neo4j"

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jPassword = "password"
	DefaultNeo4jTimeout  = time.Duration(0) // no bound unless configured
	DefaultMemoryLimit   = 300
	DefaultJpegQuality   = 70
	DefaultTypeInterval  = 100 * time.Millisecond
)

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration

	// PasswordSource is one of "env", "config", "keyring" or "default"
	PasswordSource string
}

type MemoryConfig struct {
	DSN   string
	Limit int
}

type DesktopConfig struct {
	Quality      int
	MaxSide      int
	SaveDir      string
	TypeInterval time.Duration
}

// Config holds the settings shared by all bridges.
type Config struct {
	Path    string
	Neo4j   Neo4jConfig
	Memory  MemoryConfig
	Desktop DesktopConfig
}

// dotenvFiles are loaded without overriding variables that are already set
var dotenvFiles = []string{".env"}

// keyringGet is swapped in tests
var keyringGet = keyring.Get

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:            DefaultNeo4jURI,
			User:           DefaultNeo4jUser,
			Password:       DefaultNeo4jPassword,
			Timeout:        DefaultNeo4jTimeout,
			PasswordSource: "default",
		},
		Memory: MemoryConfig{
			Limit: DefaultMemoryLimit,
		},
		Desktop: DesktopConfig{
			Quality:      DefaultJpegQuality,
			TypeInterval: DefaultTypeInterval,
		},
	}
}

// Load builds the configuration from defaults, an optional ini file, .env
// and the process environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}

	passwordSet := false
	if path != "" {
		set, err := cfg.applyIni(path)
		if err != nil {
			return nil, err
		}
		passwordSet = set
		cfg.Path = path
	}

	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil {
			utils.Verbose("no env file loaded from %s: %v", f, err)
		}
	}

	if cfg.applyEnv() {
		passwordSet = true
	}

	if !passwordSet {
		password, err := keyringGet(KeyringService, KeyringUser)
		switch {
		case err == nil && password != "":
			cfg.Neo4j.Password = password
			cfg.Neo4j.PasswordSource = "keyring"
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			utils.Verbose("keyring lookup failed: %v", err)
		}
	}

	return cfg, nil
}

func (c *Config) applyIni(path string) (bool, error) {
	file, err := ini.Load(path)
	if err != nil {
		return false, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	neo := file.Section("neo4j")
	c.Neo4j.URI = neo.Key("uri").MustString(c.Neo4j.URI)
	c.Neo4j.User = neo.Key("user").MustString(c.Neo4j.User)
	c.Neo4j.Database = neo.Key("database").MustString(c.Neo4j.Database)
	c.Neo4j.Timeout = neo.Key("timeout").MustDuration(c.Neo4j.Timeout)

	passwordSet := false
	if neo.HasKey("password") {
		c.Neo4j.Password = neo.Key("password").String()
		c.Neo4j.PasswordSource = "config"
		passwordSet = true
	}

	mem := file.Section("memory")
	c.Memory.DSN = mem.Key("dsn").MustString(c.Memory.DSN)
	c.Memory.Limit = mem.Key("limit").MustInt(c.Memory.Limit)

	desk := file.Section("desktop")
	c.Desktop.Quality = desk.Key("quality").MustInt(c.Desktop.Quality)
	c.Desktop.MaxSide = desk.Key("max_side").MustInt(c.Desktop.MaxSide)
	c.Desktop.SaveDir = desk.Key("save_dir").MustString(c.Desktop.SaveDir)
	if desk.HasKey("type_interval_ms") {
		c.Desktop.TypeInterval = time.Duration(desk.Key("type_interval_ms").MustInt(100)) * time.Millisecond
	}

	return passwordSet, nil
}

// applyEnv reports whether the Neo4j password came from the environment.
func (c *Config) applyEnv() bool {
	c.Neo4j.URI = getEnvOrDefault("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = getEnvOrDefault("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Database = getEnvOrDefault("NEO4J_DATABASE", c.Neo4j.Database)
	c.Memory.DSN = getEnvOrDefault("MEMORY_DSN", c.Memory.DSN)

	if value, exists := os.LookupEnv("NEO4J_TIMEOUT"); exists {
		if timeout, err := time.ParseDuration(value); err == nil {
			c.Neo4j.Timeout = timeout
		} else {
			utils.Warn("ignoring invalid NEO4J_TIMEOUT %q", value)
		}
	}

	if value, exists := os.LookupEnv("MEMORY_LIMIT"); exists {
		if limit, err := strconv.Atoi(value); err == nil {
			c.Memory.Limit = limit
		} else {
			utils.Warn("ignoring invalid MEMORY_LIMIT %q", value)
		}
	}

	for _, key := range []string{"NEO4J_PASSWORD", "NEO4J_PASS"} {
		if value, exists := os.LookupEnv(key); exists {
			c.Neo4j.Password = value
			c.Neo4j.PasswordSource = "env"
			return true
		}
	}
	return false
}

// getEnvOrDefault retrieves an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
