package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"residadmin/pkg/session"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
	Output string `envconfig:"LOG_OUTPUT" default:"stdout"`
}

type SessionConfig struct {
	Backend     string        `envconfig:"SESSION_BACKEND" default:"file"`
	Dir         string        `envconfig:"SESSION_DIR"`
	TTL         time.Duration `envconfig:"SESSION_TTL"`
	ClearOn401  bool          `envconfig:"SESSION_CLEAR_ON_401" default:"false"`
	SQLitePath  string        `envconfig:"SQLITE_PATH"`
	MySQLDSN    string        `envconfig:"MYSQL_DSN"`
	MongoURI    string        `envconfig:"MONGO_URI"`
	MongoDBName string        `envconfig:"MONGO_DB_NAME"`
	RedisAddr   string        `envconfig:"REDIS_ADDR"`
	RedisPass   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB     int           `envconfig:"REDIS_DB" default:"0"`
}

type GuardConfig struct {
	FallbackPath    string `envconfig:"GUARD_FALLBACK_PATH" default:"/"`
	StaffDeniedPath string `envconfig:"STAFF_DENIED_PATH" default:"/403"`
	SignInPath      string `envconfig:"SIGNIN_PATH" default:"/auth/signin"`
}

// Config describes a local, single-operator console: every request is served
// with the one signed-in session, so ListenAddr stays on loopback by default.
type Config struct {
	APIBaseURL  string        `envconfig:"API_BASE_URL" required:"true"`
	AppName     string        `envconfig:"APP_NAME" default:"residadmin"`
	AppVersion  string        `envconfig:"APP_VERSION" default:"1.0"`
	ListenAddr  string        `envconfig:"LISTEN_ADDR" default:"127.0.0.1:8082"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	Session SessionConfig
	Guard   GuardConfig
	Log     LogConfig
}

// Load reads the env file named by START (.env when unset) and fatals on an
// invalid configuration.
func Load() *Config {
	if err := loadEnvFile(); err != nil {
		log.Fatalf("Env file not found: %v", err)
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func loadEnvFile() error {
	if name := os.Getenv("START"); name != "" {
		return godotenv.Load(name)
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load()
	}
	return nil
}

// Parse builds the configuration from the process environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SessionKey is the single key the session record is stored under.
func (c *Config) SessionKey() string {
	return session.Key(c.AppName, c.AppVersion)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q must be an absolute url", c.APIBaseURL)
	}
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("APP_NAME is empty")
	}

	s := &c.Session
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case BackendFile:
		if s.Dir == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("SESSION_DIR is not set and no user config dir: %w", err)
			}
			s.Dir = filepath.Join(dir, c.AppName)
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("SQLITE_PATH is not set in environment")
		}
	case BackendMySQL:
		if s.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is not set in environment")
		}
	case BackendMongo:
		if s.MongoURI == "" {
			return errors.New("MONGO_URI is not set in environment")
		}
		if s.MongoDBName == "" {
			return errors.New("MONGO_DB_NAME is not set in environment")
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			return errors.New("REDIS_ADDR is not set in environment")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", s.Backend)
	}

	for name, p := range map[string]string{
		"GUARD_FALLBACK_PATH": c.Guard.FallbackPath,
		"STAFF_DENIED_PATH":   c.Guard.StaffDeniedPath,
		"SIGNIN_PATH":         c.Guard.SignInPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s %q must be an absolute path", name, p)
		}
	}
	return nil
}
