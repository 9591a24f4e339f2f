// Package config содержит логику чтения конфигурации сервиса trackshop.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса trackshop.
type Config struct {
	RunAddress            string `env:"RUN_ADDRESS"`
	DatabaseURI           string `env:"DATABASE_URI"`
	GatewayAddress        string `env:"GATEWAY_ADDRESS"`
	GatewayKeyID          string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret      string `env:"GATEWAY_KEY_SECRET"`
	AuthSecret            string `env:"AUTH_SECRET"`
	FreeShippingThreshold int64  `env:"FREE_SHIPPING_THRESHOLD"`
	ShippingFee           int64  `env:"SHIPPING_FEE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envGatewayAddress := cfg.GatewayAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.GatewayAddress, "g", "", "payment gateway address")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envGatewayAddress != "" {
		cfg.GatewayAddress = envGatewayAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	// Суммы в пайсах: бесплатная доставка от 5000 рупий, иначе 99 рупий.
	if cfg.FreeShippingThreshold <= 0 {
		cfg.FreeShippingThreshold = 500000
	}
	if cfg.ShippingFee <= 0 {
		cfg.ShippingFee = 9900
	}

	return cfg, nil
}
