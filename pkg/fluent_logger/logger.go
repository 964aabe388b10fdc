package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config - адрес Fluent Bit и префикс тегов сервиса
type Config struct {
	Host      string
	Port      int
	TagPrefix string
	// Async не блокирует вызывающего при недоступном Fluent Bit
	Async bool
}

// NewClient создает клиент Fluent Bit.
// В режиме Async соединение устанавливается при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluent tag prefix is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("fluent host is required")
	}

	client, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        cfg.Async,
		Timeout:      3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluent client: %w", err)
	}

	return client, nil
}
