package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Gateway      GatewayConfig
	Orders       OrdersConfig
	Recovery     RecoveryConfig
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
	Env          string `envconfig:"RXSUPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"RXSUPPLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RXSUPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RXSUPPLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RXSUPPLY_DB_DSN"`
	Driver string `envconfig:"RXSUPPLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RXSUPPLY_DB_HOST"`
	LegacyPort     int    `envconfig:"RXSUPPLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RXSUPPLY_DB_USER"`
	LegacyPassword string `envconfig:"RXSUPPLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"RXSUPPLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"RXSUPPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RXSUPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RXSUPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RXSUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RXSUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RXSUPPLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RXSUPPLY_REDIS_ADDR"`
	Password     string        `envconfig:"RXSUPPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"RXSUPPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RXSUPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RXSUPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RXSUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RXSUPPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RXSUPPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RXSUPPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RXSUPPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RXSUPPLY_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"RXSUPPLY_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RXSUPPLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RXSUPPLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RXSUPPLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RXSUPPLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RXSUPPLY_ARGON_KEY_LEN" default:"32"`
}

// GatewayConfig points at the external payment/notification API.
type GatewayConfig struct {
	BaseURL string        `envconfig:"RXSUPPLY_GATEWAY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"RXSUPPLY_GATEWAY_TIMEOUT" default:"15s"`
}

type OrdersConfig struct {
	EstimatedDeliveryDays int    `envconfig:"RXSUPPLY_ORDERS_ESTIMATED_DELIVERY_DAYS" default:"10"`
	InvoiceDueDays        int    `envconfig:"RXSUPPLY_ORDERS_INVOICE_DUE_DAYS" default:"30"`
	FlatShippingRate      string `envconfig:"RXSUPPLY_ORDERS_FLAT_SHIPPING_RATE" default:"0"`
}

type RecoveryConfig struct {
	Interval  time.Duration `envconfig:"RXSUPPLY_RECOVERY_INTERVAL" default:"5m"`
	BatchSize int           `envconfig:"RXSUPPLY_RECOVERY_BATCH_SIZE" default:"50"`
	LockTTL   time.Duration `envconfig:"RXSUPPLY_RECOVERY_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RXSUPPLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RXSUPPLY_AUTO_MIGRATE" default:"false"`
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
