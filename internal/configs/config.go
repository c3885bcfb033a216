package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	Driver      string
	URL         string
	AutoMigrate bool
	MaxConns    int32
	MinConns    int32
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled           bool
	URL               string
	Exchange          string
	ReconnectInterval time.Duration
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type MediaConfig struct {
	UploadDir      string
	PublicBaseURL  string
	MaxFiles       int
	MaxUploadBytes int64
}

type AuthConfig struct {
	JWTSecret    string
	TrustGateway bool
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName         string
	Database        DBconfig
	RabbitMQ        RabbitMQConfig
	Rest            RESTconfig
	Media           MediaConfig
	Auth            AuthConfig
	FluentBit       FluentBitConfig
	StdoutLogger    StdoutLogConfig
	ShutdownTimeout time.Duration
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен, но явно переданный путь должен существовать.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		if err = godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("could not load .env file (path: %s): %w", envPath[0], err)
		}
	} else if err = godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not parse .env file: %w", err)
		}
		log.Println("Info: .env file not found, using process environment")
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "property-service")

	// Читаем конфигурацию для REST
	cfg.Rest.PORT = getEnvAsString("PORT", "5000")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	// Хранилище
	cfg.Database.Driver = strings.ToLower(getEnvAsString("STORE_DRIVER", StoreDriverPostgres))
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.AutoMigrate = getEnvAsBool("DATABASE_AUTO_MIGRATE", true)
	cfg.Database.MaxConns = int32(getEnvAsInt("DATABASE_MAX_CONNS", 10))
	cfg.Database.MinConns = int32(getEnvAsInt("DATABASE_MIN_CONNS", 0))

	// Медиа
	cfg.Media.UploadDir = getEnvAsString("MEDIA_UPLOAD_DIR", "uploads")
	cfg.Media.PublicBaseURL = getEnvAsString("MEDIA_PUBLIC_BASE_URL", "")
	cfg.Media.MaxFiles = getEnvAsInt("MEDIA_MAX_FILES", 5)
	cfg.Media.MaxUploadBytes = getEnvAsInt64("MEDIA_MAX_UPLOAD_BYTES", 5<<20)

	// Аутентификация
	cfg.Auth.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	cfg.Auth.TrustGateway = getEnvAsBool("AUTH_TRUST_GATEWAY", false)

	// Читаем конфигурацию для RabbitMQ
	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", "property_events")
	cfg.RabbitMQ.ReconnectInterval = getEnvAsDuration("RABBITMQ_RECONNECT_INTERVAL", 10*time.Second)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет сочетания параметров, которые нельзя исправить значением по умолчанию
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" && !c.Auth.TrustGateway {
		return fmt.Errorf("either AUTH_JWT_SECRET or AUTH_TRUST_GATEWAY=true is required")
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true")
		}
		if c.RabbitMQ.Exchange == "" {
			return fmt.Errorf("RABBITMQ_EXCHANGE must not be empty")
		}
	}

	if c.Media.UploadDir == "" {
		return fmt.Errorf("MEDIA_UPLOAD_DIR must not be empty")
	}
	if c.Media.MaxFiles < 1 {
		return fmt.Errorf("MEDIA_MAX_FILES must be at least 1")
	}
	if c.Media.MaxUploadBytes < 1 {
		return fmt.Errorf("MEDIA_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Rest.PORT == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.ParseInt(strings.TrimSpace(valueStr), 10, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int64: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(valStr))
	if err != nil || d < 0 {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList - список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
