package identity

import (
	"context"
	"errors"
	"strings"

	"build-streak-go/internal/models"

	"go.uber.org/zap"
)

// ErrHostUnavailable is returned by NoHost for operations that require a
// live host shell.
var ErrHostUnavailable = errors.New("host context unavailable")

// rpcCaller is the slice of the rpc.Client surface the connector needs.
type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// ConnectorSource is the direct wallet-connector strategy: ask the node
// which accounts are unlocked. It carries no social identity and has no
// push channel, so Subscribe is a no-op.
type ConnectorSource struct {
	caller rpcCaller
}

var _ Source = (*ConnectorSource)(nil)

func NewConnectorSource(caller rpcCaller) *ConnectorSource {
	return &ConnectorSource{caller: caller}
}

func (s *ConnectorSource) Resolve(ctx context.Context) (*models.UserSession, error) {
	var accounts []string
	if err := s.caller.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		zap.L().Warn("Wallet connector unavailable", zap.Error(err))
		return nil, nil
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &models.UserSession{Address: strings.ToLower(accounts[0])}, nil
}

func (s *ConnectorSource) Subscribe(func(*models.UserSession)) {}
