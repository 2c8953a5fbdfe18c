package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/notifier"
	"github.com/t2bot/transfer-repo/redislib"
)

// Prints transfer lifecycle events as the server publishes them to redis.
func main() {
	configPath := flag.String("config", config.DefaultPath, "The path to the server configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	conn := redislib.NewConnection(cfg.Redis)
	if conn == nil {
		logrus.Fatal("Redis is not enabled in the configuration")
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logrus.Info("Waiting for events on ", notifier.EventsChannel)
	for payload := range conn.Subscribe(ctx, notifier.EventsChannel) {
		fmt.Println(payload)
	}
}
