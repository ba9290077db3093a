package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"go-gin-rbac/internal/core/config"
)

// Mailer 发信接口；业务侧只关心 OTP 邮件
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttlMin int) error
}

type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttlMin int) error {
	msg, err := BuildOTPMessage(m.cfg.From, to, code, ttlMin)
	if err != nil {
		return err
	}
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

const otpTemplate = `<h2>Your OTP Code</h2>
<p>Your one-time password is: <strong>%s</strong></p>
<p>This code will expire in %d minutes.</p>
`

func BuildOTPMessage(from, to, code string, ttlMin int) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject("Your OTP Code")
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(otpTemplate, code, ttlMin))
	return msg, nil
}
