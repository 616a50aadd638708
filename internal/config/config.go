package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	RepositoryPostgres = "postgres"
	RepositorySQLite   = "sqlite"
	RepositoryInMemory = "inmemory"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"

	defaultConfigPath = "config.yml"
	envPrefix         = "TODO"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	Migrate        bool          `mapstructure:"migrate"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // postgres, sqlite or inmemory
}

type AuthConfig struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// TelemetryConfig selects where traces and metrics go. The OTLP exporter also honours
// the standard OTEL_EXPORTER_OTLP_* variables; Endpoint overrides them when set.
type TelemetryConfig struct {
	Exporter       string        `mapstructure:"exporter"` // none, stdout or otlp
	ServiceName    string        `mapstructure:"service_name"`
	Endpoint       string        `mapstructure:"endpoint"`
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("sqlite.path", "data/todo.db")

	v.SetDefault("logging.development", false)

	v.SetDefault("repository.type", RepositoryInMemory)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "todo-tracker")
	v.SetDefault("auth.access_token_ttl", 2*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("rate_limit.requests_per_minute", 100)

	v.SetDefault("telemetry.exporter", ExporterNone)
	v.SetDefault("telemetry.service_name", "todo-tracker")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.metric_interval", 15*time.Second)
}

// RegisterFlags adds the flags shared by every command.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", defaultConfigPath, "path to the YAML config file")
	flags.String("repository", "", "storage backend: postgres, sqlite or inmemory")
	flags.String("port", "", "HTTP port")
	flags.Bool("dev", false, "development logging")
}

// Load merges defaults, the config file, TODO_* environment variables and flags,
// in increasing order of precedence. flags must have been set up with RegisterFlags
// and already parsed.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"repository.type":     "repository",
		"server.port":         "port",
		"logging.development": "dev",
	}
	for key, name := range bindings {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	path := defaultConfigPath
	if flag := flags.Lookup("config"); flag != nil {
		path = flag.Value.String()
	}
	if err := readConfigFile(v, path, flags.Changed("config")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile tolerates a missing file unless the path was given explicitly.
func readConfigFile(v *viper.Viper, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("open config %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres repository")
		}
	case RepositorySQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite repository")
		}
	case RepositoryInMemory:
	default:
		return fmt.Errorf("unknown repository type %q", c.Repository.Type)
	}

	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	switch c.Telemetry.Exporter {
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("unknown telemetry exporter %q", c.Telemetry.Exporter)
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database.min_connections (%d) exceeds max_connections (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
