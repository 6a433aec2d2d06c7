// Package config loads the application configuration and the optional .env file.
package config

import (
	"path/filepath"
	"sync"

	"pepedou/budget-nanny/internal/fileutils"
	"pepedou/budget-nanny/internal/logging"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, if one exists. Variables already set win.
func LoadEnv(logger logging.Logger) {
	once.Do(func() {
		if logger == nil {
			logger = logging.GetLogger()
		}
		envFile, ok := findEnvFile()
		if !ok {
			logger.Debug("No .env file found, using environment variables")
			return
		}

		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file", logging.F(logging.FieldFile, envFile))
			return
		}
		logger.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
	})
}

func findEnvFile() (string, bool) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if fileutils.FileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
