package fcm

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps the Firebase Cloud Messaging client used for best-effort push
// delivery. All methods are nil-safe: a nil *Client silently does nothing, so
// the service runs unchanged when push is not configured.
type Client struct {
	messaging *messaging.Client
}

// NewClient initializes the Firebase app and its messaging client from a
// service account file
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FCM credentials path not provided")
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FCM credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &Client{messaging: client}, nil
}

// Send pushes one message to a device token
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if c == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
	}
	_, err := c.messaging.Send(ctx, msg)
	return err
}
