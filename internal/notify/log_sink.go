package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink 未配置任何外部渠道时使用
type LogSink struct{ log *zap.Logger }

func NewLogSink(log *zap.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, m Message) error {
	s.log.Info("notification",
		zap.String("kind", string(m.Kind)),
		zap.String("booking_id", m.BookingID),
		zap.String("to", m.Customer.Email),
		zap.String("date", m.Date),
		zap.String("start", m.StartTime),
	)
	return nil
}

// SendOTP 未配置 SMTP 时把验证码打到日志，便于本地联调
func (s *LogSink) SendOTP(_ context.Context, email, code string) error {
	s.log.Info("otp mail (smtp disabled)", zap.String("email", email), zap.String("code", code))
	return nil
}
