package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"appointly/internal/core/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailSink SMTP 发信；新预约发给管理员，其余发给客户
type MailSink struct {
	addr       string
	auth       smtp.Auth
	from       string
	adminEmail string
	send       sendFunc
}

func NewMailSink(c config.Mail, adminEmail string) *MailSink {
	s := &MailSink{
		addr:       net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		from:       c.From,
		adminEmail: adminEmail,
		send:       smtp.SendMail,
	}
	if c.Username != "" {
		s.auth = smtp.PlainAuth("", c.Username, c.Password, c.Host)
	}
	return s
}

func (s *MailSink) Name() string { return "mail" }

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "booking.created"}}<p>New booking from <b>{{.Customer.Name}}</b> ({{.Customer.Email}}{{if .Customer.Phone}}, {{.Customer.Phone}}{{end}})</p>
<p>{{.Date}} {{.StartTime}}-{{.EndTime}}</p>
<p>Booking ID: {{.BookingID}}</p>{{end}}
{{define "booking.confirmed"}}<p>Hi {{.Customer.Name}},</p>
<p>Your booking on {{.Date}} at {{.StartTime}}-{{.EndTime}} is confirmed.</p>{{end}}
{{define "booking.cancelled"}}<p>Hi {{.Customer.Name}},</p>
<p>Your booking on {{.Date}} at {{.StartTime}}-{{.EndTime}} has been cancelled.</p>{{end}}
{{define "user.welcome"}}<p>Hi {{.Customer.Name}},</p>
<p>Welcome to Appointly. Your username is <b>{{.Customer.Username}}</b>.</p>{{end}}
{{define "otp"}}<p>Your verification code is <b>{{.}}</b>.</p>
<p>If you did not request it, ignore this email.</p>{{end}}
`))

var mailSubjects = map[Kind]string{
	KindNewBooking:       "New booking",
	KindBookingConfirmed: "Booking confirmed",
	KindBookingCancelled: "Booking cancelled",
	KindWelcome:          "Welcome to Appointly",
}

func (s *MailSink) Deliver(_ context.Context, m Message) error {
	subject, ok := mailSubjects[m.Kind]
	if !ok {
		return fmt.Errorf("mail: unknown kind %q", m.Kind)
	}
	to := m.Customer.Email
	if m.Kind == KindNewBooking {
		to = s.adminEmail
	}
	if to == "" {
		return fmt.Errorf("mail: no recipient for %s", m.Kind)
	}
	return s.render(to, subject, string(m.Kind), m)
}

// SendOTP 同步发送，供注册流程使用
func (s *MailSink) SendOTP(_ context.Context, email, code string) error {
	return s.render(email, "Your verification code", "otp", code)
}

func (s *MailSink) render(to, subject, tpl string, data any) error {
	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, tpl, data); err != nil {
		return fmt.Errorf("mail: render %s: %w", tpl, err)
	}
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.TrimSpace(body.String()))
	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}
