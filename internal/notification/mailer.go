package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/metrics"
)

// Mailer SMTP 邮件通知器
//
// 通知是尽力而为的辅助功能：发送失败只记录日志，
// 绝不回滚或阻塞触发它的审批状态变更。
type Mailer struct {
	cfg *config.SMTPConfig
}

func NewMailer(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send 同步发送邮件。未启用时仅记录日志并返回 nil
func (m *Mailer) Send(to []string, subject, body string) error {
	recipients := filterEmpty(to)
	if len(recipients) == 0 {
		return nil
	}

	if !m.cfg.Enabled {
		logger.Debugf("[Mailer] SMTP disabled, skipping mail to %s: %s", strings.Join(recipients, ","), subject)
		return nil
	}

	msg := buildMessage(m.cfg.From, recipients, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, recipients, msg); err != nil {
		metrics.NotificationsSentTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send mail to %s: %w", strings.Join(recipients, ","), err)
	}

	metrics.NotificationsSentTotal.WithLabelValues("ok").Inc()
	return nil
}

// SendAsync 异步发送邮件（fire-and-forget），失败只记录日志
func (m *Mailer) SendAsync(to []string, subject, body string) {
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			logger.Warnf("[Mailer] %v", err)
		}
	}()
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func filterEmpty(addresses []string) []string {
	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if strings.TrimSpace(addr) != "" {
			out = append(out, addr)
		}
	}
	return out
}
