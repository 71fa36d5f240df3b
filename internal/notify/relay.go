package notify

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Relay 消费 MQ 中的通知并投递到真实渠道
type Relay struct {
	d   *Dispatcher
	log *zap.Logger
}

func NewRelay(d *Dispatcher, log *zap.Logger) *Relay {
	return &Relay{d: d, log: log}
}

// Run 直到 ctx 结束或 channel 关闭
func (r *Relay) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			r.Handle(ctx, d)
		}
	}
}

// Handle 解码失败直接丢弃。所有渠道都失败时首次重入队，重投仍失败则丢弃；
// 部分渠道成功则确认，避免重投时已成功的渠道重复发送
func (r *Relay) Handle(ctx context.Context, d amqp.Delivery) {
	var m Message
	if err := json.Unmarshal(d.Body, &m); err != nil {
		r.log.Error("relay: bad payload", zap.String("key", d.RoutingKey), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if m.Kind == "" {
		m.Kind = Kind(d.RoutingKey)
	}
	sent, err := r.d.deliverAll(ctx, m)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case sent > 0:
		r.log.Warn("relay: partial delivery, not retried",
			zap.String("key", d.RoutingKey),
			zap.Int("sent", sent),
			zap.Error(err),
		)
		_ = d.Ack(false)
	default:
		r.log.Warn("relay: delivery failed",
			zap.String("key", d.RoutingKey),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		_ = d.Nack(false, !d.Redelivered)
	}
}
