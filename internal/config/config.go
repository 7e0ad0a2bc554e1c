// Package config reads the process configuration from the environment.
package config

import "os"

type Config struct {
	ListenAddr   string
	DSN          string
	RedisAddr    string
	JWTSecret    string
	KafkaEnabled bool
	OrderTopic   string
}

// Load reads the environment with development defaults.
func Load() Config {
	return Config{
		ListenAddr:   env("LISTEN_ADDR", ":8080"),
		DSN:          env("DB_DSN", "root:@tcp(127.0.0.1:3306)/asiamart"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		JWTSecret:    env("JWT_SECRET", "secret"),
		KafkaEnabled: os.Getenv("KAFKA_DISABLED") == "",
		OrderTopic:   env("ORDER_TOPIC", "order-topic"),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
