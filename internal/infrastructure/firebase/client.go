package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const (
	workspacesCollection       = "workspaces"
	bankAccountsCollection     = "bank_accounts"
	bankTransactionsCollection = "bank_transactions"
)

// Client wraps the Firestore handle shared by all repositories.
type Client struct {
	fs *firestore.Client
}

// NewClient initializes a Firebase app and returns a Firestore-backed client.
// credentialsFile may be empty, in which case application default credentials
// are used.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	conf := &firebase.Config{ProjectID: projectID}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}

	return &Client{fs: fs}, nil
}

// Close releases the underlying Firestore connection.
func (c *Client) Close() error {
	return c.fs.Close()
}
