// Package sender реализует отправку писем почтового воркера:
// коды подтверждения адреса, коды MFA и уведомления о новых публикациях.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// SubscriberProvider возвращает адреса получателей рассылки о публикациях.
type SubscriberProvider interface {
	ListSubscriberEmails(ctx context.Context) ([]string, error)
}

// SenderService собирает текст письма по сообщению из очереди
// и отправляет его через SMTP-транспорт.
type SenderService struct {
	transport   smtp.TransportInterface
	subscribers SubscriberProvider
	log         *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, subscribers SubscriberProvider, log *slog.Logger) *SenderService {
	return &SenderService{
		transport:   transport,
		subscribers: subscribers,
		log:         log,
	}
}

// SendVerificationEmail отправляет письмо с кодом подтверждения адреса.
func (s *SenderService) SendVerificationEmail(body []byte) error {
	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Подтверждение адреса электронной почты"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nДля завершения регистрации подтвердите адрес электронной почты, указав код:\n\n%s\n\nКод действует 24 часа.",
		message.Username, message.Code)

	return s.sendEmail(to, subject, bodyText)
}

// SendMfaEmail отправляет письмо с одноразовым кодом входа.
func (s *SenderService) SendMfaEmail(body []byte) error {
	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Код подтверждения входа"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш код подтверждения входа: %s\n\nЕсли вы не пытались войти, смените пароль.",
		message.Username, message.Code)

	return s.sendEmail(to, subject, bodyText)
}

// SendPublishedEmail рассылает активным пользователям уведомление
// о новой публикации.
func (s *SenderService) SendPublishedEmail(body []byte) error {
	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to, err := s.subscribers.ListSubscriberEmails(context.Background())
	if err != nil {
		s.log.Error("failed to list subscribers", sl.Err(err))
		return err
	}
	if len(to) == 0 {
		return nil
	}

	subject := "Новая публикация: " + message.Subject
	bodyText := fmt.Sprintf("На сайте вышла новая статья: %s\n\n%s", message.Subject, message.Body)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Int("recipients", len(to)))
	return nil
}
