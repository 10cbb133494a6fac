package ai

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

// buildFunc creates an SDK-backed Client for one credential value.
type buildFunc func(ctx context.Context, credential string) (Client, error)

// lazyClient resolves the credential on every request and builds the
// underlying client on first use, rebuilding it when the credential changes.
type lazyClient struct {
	credentials CredentialProvider
	build       buildFunc
	logger      *zap.Logger

	mu         sync.Mutex
	credential string
	client     Client
}

func newLazyClient(credentials CredentialProvider, build buildFunc, logger *zap.Logger) *lazyClient {
	return &lazyClient{
		credentials: credentials,
		build:       build,
		logger:      logger.Named("ai.lazy"),
	}
}

// RequestReply implements Client.
func (c *lazyClient) RequestReply(ctx context.Context, conversation []chat.Message, newUserText string) (string, error) {
	client, err := c.current(ctx)
	if err != nil {
		return "", unavailable("%v", err)
	}
	return client.RequestReply(ctx, conversation, newUserText)
}

func (c *lazyClient) current(ctx context.Context) (Client, error) {
	credential, err := c.credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.credential == credential {
		return c.client, nil
	}

	client, err := c.build(ctx, credential)
	if err != nil {
		return nil, err
	}
	if c.client != nil {
		c.logger.Info("credential changed, client rebuilt")
	}
	c.client = client
	c.credential = credential
	return client, nil
}

var _ Client = (*lazyClient)(nil)
