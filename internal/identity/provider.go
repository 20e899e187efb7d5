package identity

import (
	"context"
	"sync"

	"build-streak-go/internal/models"

	"go.uber.org/zap"
)

// Provider resolves a session by trying each source in order and fans
// identity-change events out to subscribers. The strategy set (host context,
// direct connector) is fixed at composition time; there is exactly one live
// code path per strategy.
type Provider struct {
	sources []Source

	mu       sync.Mutex
	current  *models.UserSession
	handlers []func(*models.UserSession)
}

func NewProvider(sources ...Source) *Provider {
	p := &Provider{sources: sources}
	for _, src := range sources {
		src.Subscribe(p.dispatch)
	}
	return p
}

// ResolveSession returns the first session any source yields, or (nil, nil)
// when nobody is connected. Source failures are logged and skipped, never
// retried.
func (p *Provider) ResolveSession(ctx context.Context) (*models.UserSession, error) {
	for _, src := range p.sources {
		sess, err := src.Resolve(ctx)
		if err != nil {
			zap.L().Warn("Identity source failed", zap.Error(err))
			continue
		}
		if sess != nil {
			p.setCurrent(sess)
			return sess, nil
		}
	}
	p.setCurrent(nil)
	return nil, nil
}

// OnIdentityChanged registers a handler for out-of-band identity changes
// pushed by any source. A nil session means the identity went away.
func (p *Provider) OnIdentityChanged(handler func(*models.UserSession)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// Current returns the last resolved session, which may be nil.
func (p *Provider) Current() *models.UserSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) setCurrent(sess *models.UserSession) {
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()
}

func (p *Provider) dispatch(sess *models.UserSession) {
	p.mu.Lock()
	p.current = sess
	handlers := make([]func(*models.UserSession), len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(sess)
	}
}
