package rail

import (
	"fmt"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// Registry maps rails to their clients.
type Registry struct {
	clients map[domain.Rail]usecase.RailClient
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[domain.Rail]usecase.RailClient)}
}

// Register binds client to rail, replacing any previous binding.
func (r *Registry) Register(rail domain.Rail, client usecase.RailClient) {
	r.clients[rail] = client
}

// Client returns the client for rail.
func (r *Registry) Client(rail domain.Rail) (usecase.RailClient, error) {
	c, ok := r.clients[rail]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no client configured", domain.ErrUnsupportedRail, rail)
	}
	return c, nil
}

// Rails returns the registered rails.
func (r *Registry) Rails() []domain.Rail {
	out := make([]domain.Rail, 0, len(r.clients))
	for _, rail := range domain.Rails() {
		if _, ok := r.clients[rail]; ok {
			out = append(out, rail)
		}
	}
	return out
}

// NewRegistryFromConfig registers an HTTP client for every rail with a base
// URL. Both PayShap flows share the bank endpoint and its OAuth credentials.
func NewRegistryFromConfig(cfg config.RailsConfig, m *metrics.Metrics) *Registry {
	r := NewRegistry()
	if cfg.PayShap.Enabled() {
		for _, rail := range []domain.Rail{domain.RailPayShapRPP, domain.RailPayShapRTP} {
			r.Register(rail, NewHTTPClient(rail, cfg.PayShap, WithOAuth(cfg.PayShapOAuth), WithMetrics(m)))
		}
	}
	for rail, rc := range map[domain.Rail]config.RailConfig{
		domain.RailZapperQR:   cfg.Zapper,
		domain.RailHaloDotNFC: cfg.HaloDot,
		domain.RailPeachCard:  cfg.Peach,
		domain.RailEasyPay:    cfg.EasyPay,
	} {
		if rc.Enabled() {
			r.Register(rail, NewHTTPClient(rail, rc, WithMetrics(m)))
		}
	}
	return r
}

// CallbackSecrets collects the per-rail callback secrets from cfg.
func CallbackSecrets(cfg config.RailsConfig) map[domain.Rail]string {
	return map[domain.Rail]string{
		domain.RailPayShapRPP: cfg.PayShap.CallbackSecret,
		domain.RailPayShapRTP: cfg.PayShap.CallbackSecret,
		domain.RailZapperQR:   cfg.Zapper.CallbackSecret,
		domain.RailHaloDotNFC: cfg.HaloDot.CallbackSecret,
		domain.RailPeachCard:  cfg.Peach.CallbackSecret,
		domain.RailEasyPay:    cfg.EasyPay.CallbackSecret,
	}
}
