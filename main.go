package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pepedou/budget-nanny/cmd/cache"
	"pepedou/budget-nanny/cmd/normalize"
	"pepedou/budget-nanny/cmd/reconcile"
	"pepedou/budget-nanny/cmd/root"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// Environment first so NANNY_* variables reach viper and LOG_LEVEL reaches logrus.
	loadEnvSilently()
	configureLogLevelDirectly()

	root.Init()

	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(normalize.Cmd)
	root.Cmd.AddCommand(cache.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global logrus level before any logging happens
func configureLogLevelDirectly() {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
