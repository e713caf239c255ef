// Package statusmirror best-effort mirrors deposit and redemption lifecycle
// transitions into Firestore for real-time UI consumption, adapted from this
// lineage's Firestore sync service: a no-op client when disabled, a real one
// wrapping the Firebase Admin SDK when FIRESTORE_ENABLED is set.
package statusmirror

import (
	"context"
	"fmt"
	"log"
	"sync"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Client wraps a Firestore client for mirroring relayer status. When
// disabled, every mirror call is a no-op so the relayer runs without
// Firestore configured at all.
type Client struct {
	firestore *gcpfirestore.Client
	projectID string
	logger    *log.Logger
	enabled   bool
	mu        sync.RWMutex
}

// Config configures the status mirror client.
type Config struct {
	ProjectID       string
	CredentialsFile string
	Enabled         bool
	Logger          *log.Logger
}

// NewClient constructs a Client. If cfg.Enabled is false, it returns
// immediately with a no-op client and never touches the network.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[StatusMirror] ", log.LstdFlags)
	}

	c := &Client{projectID: cfg.ProjectID, logger: cfg.Logger, enabled: cfg.Enabled}
	if !cfg.Enabled {
		cfg.Logger.Println("status mirror disabled - running in no-op mode")
		return c, nil
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("statusmirror: project id is required when enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("statusmirror: initialize firebase app: %w", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("statusmirror: create firestore client: %w", err)
	}
	c.firestore = fsClient

	cfg.Logger.Printf("status mirror initialized for project: %s", cfg.ProjectID)
	return c, nil
}

// IsEnabled reports whether this client performs real Firestore writes.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firestore != nil {
		return c.firestore.Close()
	}
	return nil
}
