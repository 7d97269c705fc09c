// Package smtp оборачивает net/smtp для отправки писем редакции:
// коды подтверждения почты, MFA и уведомления о новых публикациях.
package smtp

import "io"

// Client — минимальный набор команд SMTP-сессии, нужный отправителю.
// Выделен в интерфейс, чтобы в тестах сессию можно было подменить.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессии и знает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
