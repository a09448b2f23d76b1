package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; every variable already carries the TERRA_
// prefix in its tag so the prefix itself stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "TERRA_APP_ENV"
	EnvDBDSN  = "TERRA_DB_DSN"
	EnvDBHost = "TERRA_DB_HOST"
	EnvDBUser = "TERRA_DB_USER"
	EnvDBName = "TERRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Geocode      GeocodeConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TERRA_APP_ENV" required:"true"`
	Port         string `envconfig:"TERRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TERRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TERRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TERRA_DB_DSN"`
	Driver string `envconfig:"TERRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TERRA_DB_HOST"`
	LegacyPort     int    `envconfig:"TERRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TERRA_DB_USER"`
	LegacyPassword string `envconfig:"TERRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TERRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TERRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TERRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TERRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TERRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TERRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TERRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TERRA_REDIS_ADDR"`
	Password     string        `envconfig:"TERRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TERRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TERRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TERRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TERRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TERRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TERRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TERRA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TERRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TERRA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TERRA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TERRA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TERRA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TERRA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TERRA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TERRA_ARGON_KEY_LEN" default:"32"`
}

type GeocodeConfig struct {
	APIKey string `envconfig:"TERRA_GEOCODE_API_KEY"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"TERRA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	AuditTopic string `envconfig:"TERRA_PUBSUB_AUDIT_TOPIC" default:"terra-audit-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TERRA_AUTO_MIGRATE" default:"false"`
	AuditEvents bool `envconfig:"TERRA_FEATURE_AUDIT_EVENTS" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
