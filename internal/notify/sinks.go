package notify

import (
	"go.uber.org/zap"

	"appointly/internal/core/config"
	"appointly/internal/service/ports"
)

// DeliverySinks 按配置组装真实投递渠道；都未配置时退回日志
func DeliverySinks(cfg *config.Config, log *zap.Logger) ([]Sink, error) {
	var sinks []Sink
	if cfg.Mail.Host != "" {
		sinks = append(sinks, NewMailSink(cfg.Mail, cfg.Notify.AdminEmail))
	}
	if cfg.Telegram.Token != "" {
		tg, err := NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, tg)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NewLogSink(log))
	}
	return sinks, nil
}

// OTPMailer 验证码邮件必须同步发送，不走队列
func OTPMailer(cfg *config.Config, log *zap.Logger) ports.Mailer {
	if cfg.Mail.Host != "" {
		return NewMailSink(cfg.Mail, cfg.Notify.AdminEmail)
	}
	return NewLogSink(log)
}
