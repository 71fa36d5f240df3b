package notify

import "context"

type publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// MQSink 把通知发到 RabbitMQ，由 cmd/notifier 消费后真正投递
type MQSink struct{ pub publisher }

func NewMQSink(pub publisher) *MQSink { return &MQSink{pub: pub} }

func (s *MQSink) Name() string { return "rabbitmq" }

func (s *MQSink) Deliver(ctx context.Context, m Message) error {
	return s.pub.PublishJSON(ctx, string(m.Kind), m)
}
