package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ZillowConfig - адрес сервиса поиска и прокси для исходящих запросов
type ZillowConfig struct {
	SearchURL string
	ProxyURL  string
}

// RabbitMQConfig - пустой URL отключает работу с очередями
type RabbitMQConfig struct {
	URL string
}

type RESTConfig struct {
	Port           string
	AllowedOrigins []string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Zillow       ZillowConfig
	RabbitMQ     RabbitMQConfig
	Rest         RESTConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// QueueEnabled - нужно ли поднимать consumer и producer
func (c *AppConfig) QueueEnabled() bool {
	return c.RabbitMQ.URL != ""
}

// LoadConfig загружает конфигурацию из .env и переменных окружения.
// Отсутствие .env по умолчанию не ошибка, отсутствие явно указанного файла - ошибка.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("could not load .env file (path: %s): %w", envPath[0], err)
		}
	} else if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not parse .env file: %w", err)
		}
		log.Println("Info: .env file not found, using process environment")
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "zillow-search-service")

	cfg.Zillow.SearchURL = getEnvAsString("ZILLOW_SEARCH_URL", "")
	cfg.Zillow.ProxyURL = getEnvAsString("ZILLOW_PROXY_URL", "")

	cfg.RabbitMQ.URL = getEnvAsString("RABBITMQ_URL", "")

	cfg.Rest.Port = getEnvAsString("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(cfg.Rest.Port); err != nil {
		return nil, fmt.Errorf("HTTP_PORT must be a number, got %q", cfg.Rest.Port)
	}

	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

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

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы пропускаются
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// getEnvAsInt возвращает значение по умолчанию, если переменная не число
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}
