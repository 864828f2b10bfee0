package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets YAML carry values like "5m" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	HTTPAddr        string   `yaml:"http_addr"`
	MySQLDSN        string   `yaml:"mysql_dsn"`
	RedisAddr       string   `yaml:"redis_addr"`
	RedisPoolSize   int      `yaml:"redis_pool_size"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		MySQLDSN:        "root:root@tcp(localhost:3306)/tirehouse?parseTime=true",
		RedisAddr:       "localhost:6379",
		RedisPoolSize:   100,
		MaxOpenConns:    50,
		MaxIdleConns:    25,
		ConnMaxLifetime: Duration(5 * time.Minute),
		ShutdownTimeout: Duration(5 * time.Second),
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is fine; env alone works too.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQLDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}

	return cfg, nil
}
