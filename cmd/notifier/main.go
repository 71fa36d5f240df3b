// notifier 消费 RabbitMQ 中的预约事件，发送邮件/Telegram。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"appointly/internal/core/config"
	"appointly/internal/core/logger"
	"appointly/internal/mq"
	"appointly/internal/notify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if !cfg.Rabbit.Enabled() {
		log.Fatal("rabbit.url is empty; notifier has nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, err := notify.DeliverySinks(cfg, log)
	if err != nil {
		log.Fatal("build sinks", zap.Error(err))
	}
	d := notify.NewDispatcher(log, notify.Options{
		Timeout: time.Duration(cfg.Notify.TimeoutSec) * time.Second,
	}, sinks...)

	c, err := mq.NewConsumer(cfg.Rabbit.URL, cfg.Rabbit.Exchange, cfg.Rabbit.Queue, notify.AllKinds, cfg.Rabbit.Prefetch)
	if err != nil {
		log.Fatal("rabbitmq consumer", zap.Error(err))
	}
	defer c.Close()

	deliveries, err := c.Deliveries(ctx)
	if err != nil {
		log.Fatal("consume", zap.Error(err))
	}
	log.Info("notifier started",
		zap.String("exchange", cfg.Rabbit.Exchange),
		zap.String("queue", cfg.Rabbit.Queue),
		zap.Int("sinks", len(sinks)),
	)

	if err := notify.NewRelay(d, log).Run(ctx, deliveries); err != nil {
		log.Error("notifier stopped", zap.Error(err))
		return
	}
	log.Info("notifier stopped gracefully")
}
