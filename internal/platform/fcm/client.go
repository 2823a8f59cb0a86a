package fcm

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Config holds what is needed to reach Firebase Cloud Messaging.
type Config struct {
	ProjectID string
	// CredentialsFile is a service account JSON file. Empty means
	// Application Default Credentials.
	CredentialsFile string
}

// clientOnce guards the process-wide messaging client.
type clientOnce struct {
	once   sync.Once
	client *messaging.Client
	err    error
}

func (c *clientOnce) get(init func() (*messaging.Client, error)) (*messaging.Client, error) {
	c.once.Do(func() {
		c.client, c.err = init()
	})
	return c.client, c.err
}

var shared clientOnce

// NewMessagingClient initialises the Firebase app and returns its messaging
// client. Only the first call does any work; later calls return the same
// handle (or the same error) regardless of their arguments.
func NewMessagingClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*messaging.Client, error) {
	return shared.get(func() (*messaging.Client, error) {
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
		}
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create fcm messaging client: %w", err)
		}
		return client, nil
	})
}
