package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/api"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/logging"
	"github.com/t2bot/transfer-repo/common/runtime"
	"github.com/t2bot/transfer-repo/common/version"
	"github.com/t2bot/transfer-repo/metrics"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "The path to the configuration")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	// Override config path with config for Docker users
	configEnv := os.Getenv(config.EnvConfigPath)
	if configEnv != "" {
		configPath = &configEnv
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	err = logging.Setup(
		cfg.General.LogDirectory,
		cfg.General.LogColors,
		cfg.General.JsonLogs,
		cfg.General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	if err = cfg.Validate(); err != nil {
		logrus.Fatal("Invalid configuration: ", err)
	}

	if cfg.Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		version.SetDefaults()
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.Dsn,
			Environment: cfg.Sentry.Environment,
			Debug:       cfg.Sentry.Debug,
			Release:     fmt.Sprintf("%s-%s", version.Version, version.GitCommit),
		})
		if err != nil {
			panic(err)
		}
	}
	defer sentry.Flush(2 * time.Second)
	defer sentry.Recover()

	logrus.Info("Starting up...")
	services, err := runtime.RunStartupSequence(cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	logrus.Info("Starting transfer repository...")
	metrics.Init(cfg.Metrics)
	web := api.Init(cfg, &api.Dependencies{
		Controller:   services.Controller,
		LocalStorage: services.LocalStorage,
	})

	// Set up a function to stop everything
	stopAllButWeb := func() {
		logrus.Info("Stopping metrics...")
		metrics.Stop()

		services.Stop()
	}

	// Set up a listener for SIGINT
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	selfStop := false
	go func() {
		<-stop
		selfStop = true

		logrus.Warn("Stop signal received")
		logrus.Info("Stopping web server...")
		api.Stop()
	}()

	// Wait for the web server to exit nicely
	web.Wait()
	stopAllButWeb()
	if !selfStop {
		logrus.Warn("Web server stopped without a signal")
	}

	// For debugging
	logrus.Info("Goodbye!")
}
