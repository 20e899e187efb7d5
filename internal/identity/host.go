package identity

import (
	"context"
	"strings"
	"sync"

	"build-streak-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HostSource resolves identity from the host-injected context object. It is
// the preferred strategy: the host knows both the wallet and the richer
// social identity (display name, avatar).
type HostSource struct {
	host models.HostContext

	mu     sync.Mutex
	user   *models.HostUser
	wallet *models.HostWallet
}

var _ Source = (*HostSource)(nil)

func NewHostSource(host models.HostContext) *HostSource {
	return &HostSource{host: host}
}

// Resolve fetches the host's user and wallet objects concurrently, the same
// pairing the host SDK exposes. Any host failure degrades to "no session".
func (s *HostSource) Resolve(ctx context.Context) (*models.UserSession, error) {
	var user *models.HostUser
	var wallet *models.HostWallet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.host.GetUser(gctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		w, err := s.host.GetWallet(gctx)
		if err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Warn("Host context unavailable", zap.Error(err))
		return nil, nil
	}

	s.mu.Lock()
	s.user = user
	s.wallet = wallet
	s.mu.Unlock()

	return buildSession(user, wallet), nil
}

// Subscribe wires the host's push callbacks. Each change replaces the cached
// half it concerns and emits a freshly merged session.
func (s *HostSource) Subscribe(handler func(*models.UserSession)) {
	s.host.OnUserChange(func(user *models.HostUser) {
		s.mu.Lock()
		s.user = user
		sess := buildSession(s.user, s.wallet)
		s.mu.Unlock()
		handler(sess)
	})
	s.host.OnWalletChange(func(wallet *models.HostWallet) {
		s.mu.Lock()
		s.wallet = wallet
		sess := buildSession(s.user, s.wallet)
		s.mu.Unlock()
		handler(sess)
	})
}

func buildSession(user *models.HostUser, wallet *models.HostWallet) *models.UserSession {
	if wallet == nil || wallet.Address == "" {
		return nil
	}
	sess := &models.UserSession{Address: strings.ToLower(wallet.Address)}
	if user != nil {
		sess.Username = user.Username
		sess.DisplayName = user.DisplayName
		sess.AvatarURL = user.PfpURL
		sess.FID = user.FID
	}
	return sess
}

// NoHost is the null host context for non-hosted environments: no identity,
// no signing capability, no change events.
type NoHost struct{}

var _ models.HostContext = NoHost{}

func (NoHost) GetUser(context.Context) (*models.HostUser, error)     { return nil, nil }
func (NoHost) GetWallet(context.Context) (*models.HostWallet, error) { return nil, nil }
func (NoHost) RequestTransaction(context.Context, models.HostTransaction) (string, error) {
	return "", ErrHostUnavailable
}
func (NoHost) OnUserChange(func(*models.HostUser))     {}
func (NoHost) OnWalletChange(func(*models.HostWallet)) {}
