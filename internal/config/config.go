package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	BotConfig
	GradingConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
	GetTokensFile() string
	GetSessionsFile() string
	GetSubmissionsFolder() string
	GetRosterFile() string
	GetExportFile() string
}

type mainConfig struct {
	EnvVars
	Bot
	Grading
}

// New loads an optional .env file and returns the environment backed config.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// Validate checks the values the bot cannot start without.
func Validate(c Config) error {
	if c.GetBotToken() == "" {
		return fmt.Errorf("%s is required", botTokenEnvVar)
	}
	if c.GetDataFolder() == "" {
		return fmt.Errorf("data folder cannot be empty")
	}
	if c.GetGradingTimeout() <= 0 {
		return fmt.Errorf("grading timeout must be positive")
	}
	if c.GetGradingWorkers() <= 0 {
		return fmt.Errorf("grading workers must be positive")
	}
	if c.GetInterpreter() == "" {
		return fmt.Errorf("interpreter cannot be empty")
	}
	return nil
}
