package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/newsroom-backend/internal/config"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
)

// Transport устанавливает SMTP-сессии для почтового воркера редакции.
// Сервер обязан поддерживать STARTTLS: письма с кодами подтверждения
// и уведомлениями о публикациях открытым текстом не уходят.
type Transport struct {
	cfg *config.Config
	log *slog.Logger
}

// NewTransport создает транспорт поверх SMTP-настроек из конфигурации.
func NewTransport(cfg *config.Config, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// session адаптирует *smtp.Client к интерфейсу Client.
type session struct {
	client *smtp.Client
}

func (s *session) Mail(from string) error        { return s.client.Mail(from) }
func (s *session) Rcpt(to string) error          { return s.client.Rcpt(to) }
func (s *session) Data() (io.WriteCloser, error) { return s.client.Data() }
func (s *session) Quit() error                   { return s.client.Quit() }
func (s *session) Close() error                  { return s.client.Close() }

// Connect открывает аутентифицированную SMTP-сессию с шифрованием.
func (t *Transport) Connect() (Client, error) {
	addr := t.cfg.SMTPHost + ":" + t.cfg.SMTPPort

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		t.closeQuietly(conn)
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("SMTP server does not support STARTTLS")
		t.closeQuietly(client)
		return nil, fmt.Errorf("smtp server does not support STARTTLS")
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.log.Error("failed to start TLS", sl.Err(err))
		t.closeQuietly(client)
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		t.closeQuietly(client)
		return nil, fmt.Errorf("smtp auth failed: %w", err)
	}

	return &session{client: client}, nil
}

// GetSMTPUser возвращает адрес отправителя рассылки.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}

func (t *Transport) closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close smtp connection", sl.Err(err))
	}
}
