package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joacominatel/stnl/internal/database/postgres"
)

// Defaults applied to database profiles that leave a field empty.
const (
	DefaultAlias  = "default"
	DefaultHost   = "localhost"
	DefaultPort   = 5432
	DefaultSchema = "public"
)

// Config represents the application configuration.
type Config struct {
	Databases []Database `mapstructure:"databases" yaml:"databases"`
	Log       Log        `mapstructure:"log" yaml:"log"`
}

// Database is one engine profile, addressed by its alias.
type Database struct {
	Alias    string `mapstructure:"alias" yaml:"alias"`
	Name     string `mapstructure:"name" yaml:"name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Schema   string `mapstructure:"schema" yaml:"schema"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size"`
	Workers  int    `mapstructure:"workers" yaml:"workers"`
}

// Log holds logging preferences.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ConnString renders the keyword/value connection string for the profile.
func (d Database) ConnString() string {
	return postgres.GetConnectionString(d.Name, d.User, d.Password, d.Host, d.Port, d.Schema)
}

// Options returns the engine sizing of the profile.
func (d Database) Options() postgres.Options {
	return postgres.Options{PoolSize: d.PoolSize, Workers: d.Workers}
}

// DisplayString returns a human-readable summary of the profile.
func (d Database) DisplayString() string {
	s := d.Host
	if d.Port > 0 {
		s += ":" + strconv.Itoa(d.Port)
	}
	s += "/" + d.Name
	if d.User != "" {
		s = d.User + "@" + s
	}
	if d.Schema != "" && d.Schema != DefaultSchema {
		s += " (" + d.Schema + ")"
	}
	return s
}

func (d *Database) applyDefaults() {
	if d.Alias == "" {
		d.Alias = DefaultAlias
	}
	if d.Host == "" {
		d.Host = DefaultHost
	}
	if d.Port == 0 {
		d.Port = DefaultPort
	}
	if d.Schema == "" {
		d.Schema = DefaultSchema
	}
	if d.PoolSize < 1 {
		d.PoolSize = postgres.DefaultPoolSize
	}
	if d.Workers < 1 {
		d.Workers = postgres.DefaultWorkers
	}
}

// ParseDSN parses a postgres:// URL into a profile. The search_path option,
// when present in the query string, becomes the schema.
func ParseDSN(dsn string) (Database, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Database{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Database{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	db := Database{
		Host:   u.Hostname(),
		Name:   strings.TrimPrefix(u.Path, "/"),
		Schema: u.Query().Get("search_path"),
	}
	if u.User != nil {
		db.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			db.Password = p
		}
	}
	if portStr := u.Port(); portStr != "" {
		db.Port, _ = strconv.Atoi(portStr)
	}
	db.applyDefaults()
	return db, nil
}

// Database returns the profile registered under alias.
func (cfg *Config) Database(alias string) (*Database, bool) {
	for i := range cfg.Databases {
		if cfg.Databases[i].Alias == alias {
			return &cfg.Databases[i], true
		}
	}
	return nil, false
}

// HasDatabase checks if a profile with the given alias already exists.
func (cfg *Config) HasDatabase(alias string) bool {
	_, ok := cfg.Database(alias)
	return ok
}

// AddDatabase appends a profile, or replaces the one with the same alias.
func (cfg *Config) AddDatabase(db Database) {
	db.applyDefaults()
	if existing, ok := cfg.Database(db.Alias); ok {
		*existing = db
		return
	}
	cfg.Databases = append(cfg.Databases, db)
}

// DefaultDatabase returns the profile aliased "default", or the first one.
func (cfg *Config) DefaultDatabase() *Database {
	if len(cfg.Databases) == 0 {
		return nil
	}
	if db, ok := cfg.Database(DefaultAlias); ok {
		return db
	}
	return &cfg.Databases[0]
}

// Aliases lists the configured aliases in file order.
func (cfg *Config) Aliases() []string {
	aliases := make([]string, 0, len(cfg.Databases))
	for _, db := range cfg.Databases {
		aliases = append(aliases, db.Alias)
	}
	return aliases
}

// Validate rejects profiles without a database name and duplicate aliases.
func (cfg *Config) Validate() error {
	seen := make(map[string]struct{}, len(cfg.Databases))
	for _, db := range cfg.Databases {
		if db.Name == "" {
			return fmt.Errorf("database %q: name is required", db.Alias)
		}
		if _, dup := seen[db.Alias]; dup {
			return fmt.Errorf("database alias %q is declared twice", db.Alias)
		}
		seen[db.Alias] = struct{}{}
	}
	return nil
}
