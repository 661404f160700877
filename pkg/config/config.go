package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every tunable the services read from the environment.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Kitchen       KitchenConfig
}

// Load parses the DACSAN_* environment into a Config.
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
	Env          string `envconfig:"DACSAN_APP_ENV" required:"true"`
	Port         string `envconfig:"DACSAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DACSAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DACSAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DACSAN_DB_DSN"`
	Driver string `envconfig:"DACSAN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DACSAN_DB_HOST"`
	Port     int    `envconfig:"DACSAN_DB_PORT" default:"5432"`
	User     string `envconfig:"DACSAN_DB_USER"`
	Password string `envconfig:"DACSAN_DB_PASSWORD"`
	Name     string `envconfig:"DACSAN_DB_NAME"`
	SSLMode  string `envconfig:"DACSAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DACSAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DACSAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DACSAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DACSAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DACSAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DACSAN_REDIS_ADDR"`
	Password     string        `envconfig:"DACSAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"DACSAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DACSAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DACSAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DACSAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DACSAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DACSAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DACSAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DACSAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DACSAN_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"DACSAN_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DACSAN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DACSAN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DACSAN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DACSAN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DACSAN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DACSAN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DACSAN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DACSAN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DACSAN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DACSAN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DACSAN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DACSAN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DACSAN_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"DACSAN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic        string `envconfig:"DACSAN_PUBSUB_ORDER_EVENTS_TOPIC" default:"dacsan-order-events"`
	OrderEventsSubscription string `envconfig:"DACSAN_PUBSUB_ORDER_EVENTS_SUBSCRIPTION" default:"dacsan-order-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DACSAN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DACSAN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DACSAN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// KitchenConfig tunes the cooking countdown scheduler.
type KitchenConfig struct {
	CountdownSeconds int           `envconfig:"DACSAN_KITCHEN_COUNTDOWN_SECONDS" default:"30"`
	TickInterval     time.Duration `envconfig:"DACSAN_KITCHEN_TICK_INTERVAL" default:"1s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, key := range requiredDBEnvVars {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
