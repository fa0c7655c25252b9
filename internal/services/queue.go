package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

// QueueService enqueues extraction work items on one Storage queue.
type QueueService struct {
	client *azqueue.QueueClient
	name   string
}

// NewQueueService connects to serviceURL and ensures the queue exists.
func NewQueueService(ctx context.Context, serviceURL, queueName string) (*QueueService, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("QUEUE_SERVICE_URL is required")
	}
	slog.Info("initializing queue service", "queue_url", serviceURL, "queue", queueName)

	var svc *azqueue.ServiceClient
	if usesAzurite(serviceURL) {
		slog.Info("using Azurite shared key credentials for queue service")
		cred, err := azqueue.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		svc, err = azqueue.NewServiceClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		cred, err := NewAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		svc, err = azqueue.NewServiceClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	client := svc.NewQueueClient(queueName)
	if _, err := client.Create(ctx, nil); err != nil && !isAlreadyExists(err) {
		return nil, fmt.Errorf("failed to create queue %s: %w", queueName, err)
	}

	slog.Info("queue service initialized")
	return &QueueService{client: client, name: queueName}, nil
}

// EnqueueMessage JSON-encodes message and enqueues it base64 encoded, which
// is what the Functions queue trigger expects by default.
func (s *QueueService) EnqueueMessage(ctx context.Context, message any) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	if _, err := s.client.EnqueueMessage(ctx, encoded, nil); err != nil {
		return fmt.Errorf("failed to enqueue message to %s: %w", s.name, err)
	}
	slog.Info("enqueued message", "queue", s.name, "size_bytes", len(raw))
	return nil
}
