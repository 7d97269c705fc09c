package rabbitmq

// Exchange — общий exchange почтовых уведомлений.
const Exchange = "emails"

// Routing keys для сообщений.
const (
	RoutingKeyVerification = "verification"
	RoutingKeyMFA          = "mfa"
	RoutingKeyPublished    = "published"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEmailQueues возвращает очереди почтового воркера.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "emails.verification", RoutingKey: RoutingKeyVerification},
		{QueueName: "emails.mfa", RoutingKey: RoutingKeyMFA},
		{QueueName: "emails.published", RoutingKey: RoutingKeyPublished},
	}
}
