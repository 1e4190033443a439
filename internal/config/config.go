// Package config provides configuration for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDBUriNotSetInProduction is returned when the sqlite driver is used in production without DB_URI. We need
	// this to prevent accidental production deployments writing to a scratch database.
	ErrDBUriNotSetInProduction = errors.New("DB_URI must be set in production")
	// ErrMissingRedisAddr is returned when storage or sessions use redis but REDIS_ADDR is empty.
	ErrMissingRedisAddr = errors.New("REDIS_ADDR must be set when redis is used")
	// ErrUnsupportedDriver is returned for an unknown storage or session driver.
	ErrUnsupportedDriver = errors.New("unsupported driver")
	// ErrOverlappingCodes is returned when a code appears in both ADMIN_CODES and USER_CODES.
	ErrOverlappingCodes = errors.New("access code is both an admin and a user code")
)

// Storage drivers.
const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

// Session drivers.
const (
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

const (
	// AppEnvironmentDefault is the default application environment.
	AppEnvironmentDefault = "development"
	// AppEnvironmentProduction enables the production checks and response minification.
	AppEnvironmentProduction = "production"
	// HostDefault is the default host to listen on. Can be an IP address or hostname.
	HostDefault = "localhost"
	// PortDefault is the default port to listen on.
	PortDefault = "8080"

	// LogLevelDefault is the default minimum log level.
	LogLevelDefault = "info"
	// LogFormatDefault is the default log format, text or json.
	LogFormatDefault = "text"

	// StorageDriverDefault keeps the two documents as JSON files.
	StorageDriverDefault = StorageDriverFile
	// DataDirDefault is the directory holding questions.json and leaderboard.json.
	DataDirDefault = "data"

	// DBDriverDefault is the default database driver. Currently, only sqlite is supported.
	DBDriverDefault = "sqlite"
	// DBURIDefault is the default database URI. Default is kuis.sqlite in the current directory.
	DBURIDefault = "file:kuis.sqlite?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	// DBMaxOpenConnsDefault is the default maximum number of open database connections.
	DBMaxOpenConnsDefault = 10
	// DBMaxIdleConnsDefault is the default maximum number of idle database connections.
	DBMaxIdleConnsDefault = 10
	// DBConnMaxLifetimeDefault is the default maximum lifetime of a database connection.
	DBConnMaxLifetimeDefault = 5 * time.Minute

	// RedisPrefixDefault namespaces every key written to redis.
	RedisPrefixDefault = "kuis:"

	// SessionDriverDefault is the default session store.
	SessionDriverDefault = SessionDriverMemory
	// SessionTTLDefault is how long a login stays valid.
	SessionTTLDefault = 24 * time.Hour
	// SessionCookieDefault is the name of the session cookie.
	SessionCookieDefault = "kuis_session"

	// AdminCodesDefault are the access codes granting the admin role.
	AdminCodesDefault = "ADMIN1,ADMIN2,ADMIN3"
	// UserCodesDefault are the access codes granting the user role.
	UserCodesDefault = "USERSER1,USERSERI2"
)

// Config represents the application configuration.
type Config struct {
	AppEnvironment string

	Host string
	Port string

	// ClientDir serves the quiz pages from disk instead of the embedded copy. Ignored in production.
	ClientDir string

	LogLevel  string
	LogFormat string

	StorageDriver string
	DataDir       string

	DBDriver string
	DBURI    string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SessionDriver string
	SessionTTL    time.Duration
	SessionCookie string

	AdminCodes []string
	UserCodes  []string
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnvironment == AppEnvironmentProduction
}

// UsesRedis reports whether storage or sessions need a redis connection.
func (c *Config) UsesRedis() bool {
	return c.StorageDriver == StorageDriverRedis || c.SessionDriver == SessionDriverRedis
}

// fileConfig is the layout of the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	AppEnv    string `yaml:"app_env"`
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	ClientDir string `yaml:"client_dir"`
	Log       struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Storage struct {
		Driver  string `yaml:"driver"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	DB struct {
		URI             string `yaml:"uri"`
		MaxOpenConns    string `yaml:"max_open_conns"`
		MaxIdleConns    string `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"db"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       string `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Session struct {
		Driver string `yaml:"driver"`
		TTL    string `yaml:"ttl"`
		Cookie string `yaml:"cookie"`
	} `yaml:"session"`
	Access struct {
		AdminCodes []string `yaml:"admin_codes"`
		UserCodes  []string `yaml:"user_codes"`
	} `yaml:"access"`
}

func (f *fileConfig) env() map[string]string {
	return map[string]string{
		"APP_ENV":              f.AppEnv,
		"HOST":                 f.Host,
		"PORT":                 f.Port,
		"CLIENT_DIR":           f.ClientDir,
		"LOG_LEVEL":            f.Log.Level,
		"LOG_FORMAT":           f.Log.Format,
		"STORAGE_DRIVER":       f.Storage.Driver,
		"DATA_DIR":             f.Storage.DataDir,
		"DB_URI":               f.DB.URI,
		"DB_MAX_OPEN_CONNS":    f.DB.MaxOpenConns,
		"DB_MAX_IDLE_CONNS":    f.DB.MaxIdleConns,
		"DB_CONN_MAX_LIFETIME": f.DB.ConnMaxLifetime,
		"REDIS_ADDR":           f.Redis.Addr,
		"REDIS_PASSWORD":       f.Redis.Password,
		"REDIS_DB":             f.Redis.DB,
		"REDIS_PREFIX":         f.Redis.Prefix,
		"SESSION_DRIVER":       f.Session.Driver,
		"SESSION_TTL":          f.Session.TTL,
		"SESSION_COOKIE":       f.Session.Cookie,
		"ADMIN_CODES":          strings.Join(f.Access.AdminCodes, ","),
		"USER_CODES":           strings.Join(f.Access.UserCodes, ","),
	}
}

// LoadFile reads a YAML config file and returns a getenv style lookup over its values.
func LoadFile(path string) (func(string) string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %q: %w", path, err)
	}

	var f fileConfig
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error decoding config file %q: %w", path, err)
	}
	values := f.env()

	return func(key string) string { return values[key] }, nil
}

// Parse parses environment variables into the config. When CONFIG_FILE is set, the file is read first and the
// environment overrides its values.
func Parse(getenv func(string) string) (*Config, error) {
	lookup := getenv
	if path := getenv("CONFIG_FILE"); path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		lookup = func(key string) string {
			if val := getenv(key); val != "" {
				return val
			}

			return fromFile(key)
		}
	}

	c := Config{
		AppEnvironment:    AppEnvironmentDefault,
		Host:              HostDefault,
		Port:              PortDefault,
		LogLevel:          LogLevelDefault,
		LogFormat:         LogFormatDefault,
		StorageDriver:     StorageDriverDefault,
		DataDir:           DataDirDefault,
		DBDriver:          DBDriverDefault,
		DBURI:             DBURIDefault,
		DBMaxOpenConns:    DBMaxOpenConnsDefault,
		DBMaxIdleConns:    DBMaxIdleConnsDefault,
		DBConnMaxLifetime: DBConnMaxLifetimeDefault,
		RedisPrefix:       RedisPrefixDefault,
		SessionDriver:     SessionDriverDefault,
		SessionTTL:        SessionTTLDefault,
		SessionCookie:     SessionCookieDefault,
		AdminCodes:        splitList(AdminCodesDefault),
		UserCodes:         splitList(UserCodesDefault),
	}
	// Overwrite defaults with environment variables.
	strs := map[string]*string{
		"APP_ENV":        &c.AppEnvironment,
		"HOST":           &c.Host,
		"PORT":           &c.Port,
		"CLIENT_DIR":     &c.ClientDir,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"STORAGE_DRIVER": &c.StorageDriver,
		"DATA_DIR":       &c.DataDir,
		"DB_URI":         &c.DBURI,
		"REDIS_ADDR":     &c.RedisAddr,
		"REDIS_PASSWORD": &c.RedisPassword,
		"REDIS_PREFIX":   &c.RedisPrefix,
		"SESSION_DRIVER": &c.SessionDriver,
		"SESSION_COOKIE": &c.SessionCookie,
	}
	for key, dst := range strs {
		if val := lookup(key); val != "" {
			*dst = val
		}
	}
	if val := lookup("ADMIN_CODES"); val != "" {
		c.AdminCodes = splitList(val)
	}
	if val := lookup("USER_CODES"); val != "" {
		c.UserCodes = splitList(val)
	}

	// Strict validation for types
	ints := []struct {
		key string
		dst *int
	}{
		{"DB_MAX_OPEN_CONNS", &c.DBMaxOpenConns},
		{"DB_MAX_IDLE_CONNS", &c.DBMaxIdleConns},
		{"REDIS_DB", &c.RedisDB},
	}
	for _, i := range ints {
		if val := lookup(i.key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q, err: %w", i.key, val, err)
			}
			*i.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", &c.DBConnMaxLifetime},
		{"SESSION_TTL", &c.SessionTTL},
	}
	for _, d := range durations {
		if val := lookup(d.key); val != "" {
			v, err := time.ParseDuration(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q, err: %w", d.key, val, err)
			}
			*d.dst = v
		}
	}

	if err := c.validate(lookup("DB_URI") != ""); err != nil {
		return nil, err
	}
	if c.IsProduction() {
		c.ClientDir = ""
	}

	return &c, nil
}

func (c *Config) validate(dbURISet bool) error {
	switch c.StorageDriver {
	case StorageDriverFile, StorageDriverSQLite, StorageDriverRedis, StorageDriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: %w: %q", ErrUnsupportedDriver, c.StorageDriver)
	}
	switch c.SessionDriver {
	case SessionDriverMemory, SessionDriverRedis:
	default:
		return fmt.Errorf("invalid SESSION_DRIVER: %w: %q", ErrUnsupportedDriver, c.SessionDriver)
	}

	// Mandatory fields
	if c.IsProduction() && c.StorageDriver == StorageDriverSQLite && !dbURISet {
		return ErrDBUriNotSetInProduction
	}
	if c.UsesRedis() && c.RedisAddr == "" {
		return ErrMissingRedisAddr
	}
	for _, code := range c.AdminCodes {
		if slices.Contains(c.UserCodes, code) {
			return fmt.Errorf("%w: %q", ErrOverlappingCodes, code)
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
