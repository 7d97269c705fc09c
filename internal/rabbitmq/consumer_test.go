package rabbitmq

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

func TestPublishAndConsume(t *testing.T) {
	if os.Getenv("SKIP_RABBITMQ_TESTS") == "true" {
		t.Skip("Skipping RabbitMQ tests in CI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	amqpURI, cleanup := getAmqpURI(ctx, t)
	defer cleanup()

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, GetEmailQueues())
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	received := make([]models.EmailMessage, 0)

	handler := func(body []byte) error {
		var msg models.EmailMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		wg.Done()
		return nil
	}

	require.NoError(t, ConsumerMessage(ctx, ch, "emails.verification", handler))
	require.NoError(t, ConsumerMessage(ctx, ch, "emails.mfa", handler))

	// Сообщения маршрутизируются в очереди по ключу.
	publisher := NewPublisher(ch)
	require.NoError(t, publisher.Publish(RoutingKeyVerification, models.EmailMessage{
		Email: "a@example.com", Code: "token-1", Purpose: models.TokenEmailVerification,
	}))
	require.NoError(t, publisher.Publish(RoutingKeyMFA, models.EmailMessage{
		Email: "b@example.com", Code: "123456", Purpose: models.TokenMFACode,
	}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for messages to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	codes := []string{received[0].Code, received[1].Code}
	assert.ElementsMatch(t, []string{"token-1", "123456"}, codes)
}
