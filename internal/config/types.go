package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName string
	Port   string
	Turso  TursoConfig
	Auth   AuthConfig
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type AuthConfig struct {
	JWTSecret       string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}
