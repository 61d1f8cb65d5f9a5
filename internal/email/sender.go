package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender 负责把验证码投递到目标邮箱地址。投递可能失败，
// 失败由调用方按运行模式决定如何处置。
type Sender interface {
	SendCode(ctx context.Context, to, code string) error
}

// SMTPSender 通过 SMTP 发送验证码邮件。
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender 创建 SMTP 发送器。
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendCode 发送验证码邮件，阻塞直到投递完成或失败。
func (s *SMTPSender) SendCode(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Garith 验证码")
	m.SetBody("text/plain", fmt.Sprintf("您的验证码是：%s，%d 分钟内有效。", code, 5))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// LogSender 开发模式发送器：不经过 SMTP，直接把验证码写进日志。
// 仅用于未配置邮件服务的本地环境。
type LogSender struct {
	log *zap.Logger
}

// NewLogSender 创建日志发送器。
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendCode 把验证码打印到日志，总是成功。
func (s *LogSender) SendCode(_ context.Context, to, code string) error {
	s.log.Info("verification code (development mode)",
		zap.String("email", to),
		zap.String("code", code),
	)
	return nil
}
