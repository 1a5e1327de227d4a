// cmd/worker/main.go
package main

import (
	"github.com/rateworks/refi-outreach/internal/config"
	"github.com/rateworks/refi-outreach/internal/dispatch"
	"github.com/rateworks/refi-outreach/internal/logger"
	"github.com/rateworks/refi-outreach/internal/queue"
	"github.com/rateworks/refi-outreach/internal/sender"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the dispatch worker")
	}

	mq, err := queue.NewAMQPQueue(cfg.AMQPURL, log)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mq.Close()

	dispatch.StartSubscriber(mq, sender.New(cfg, log), log)

	log.Info("Worker running, waiting for dispatch jobs...")
	select {}
}
