package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

// TokenBroker hands out the short-lived service token, reusing the cached
// one until its expiry and exchanging the identity token otherwise.
type TokenBroker struct {
	store  ports.CredentialStore
	issuer ports.ServiceTokenIssuer
	clock  ports.Clock
	logger *slog.Logger
}

func NewTokenBroker(store ports.CredentialStore, issuer ports.ServiceTokenIssuer, clock ports.Clock, logger *slog.Logger) *TokenBroker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenBroker{store: store, issuer: issuer, clock: clock, logger: logger}
}

// GetServiceToken makes no network call while the cached token is valid and
// exactly one otherwise. Failures come back as *domain.Error.
func (b *TokenBroker) GetServiceToken(ctx context.Context, identityToken string) (string, error) {
	if identityToken == "" {
		return "", domain.NewError(domain.KindIdentityExpired, domain.ErrNotLoggedIn)
	}

	record := b.store.Load(ctx)
	if record.ServiceTokenValid(b.clock.Now()) {
		b.logger.Debug("service token cache hit", "expires_at", record.ServiceTokenExpiry)
		return record.ServiceToken, nil
	}
	b.logger.Debug("service token cache miss")

	issued, err := b.issuer.IssueServiceToken(ctx, identityToken)
	if err != nil {
		classified := classifyIssueFailure(err)
		if classified.Kind == domain.KindIdentityExpired {
			b.InvalidateServiceToken(ctx)
		}
		return "", classified
	}

	b.persist(ctx, issued)
	return issued.Token, nil
}

// InvalidateServiceToken drops the cached service token and its expiry.
// Clear failures are logged and otherwise ignored.
func (b *TokenBroker) InvalidateServiceToken(ctx context.Context) {
	for _, slot := range []domain.CredentialSlot{domain.SlotService, domain.SlotServiceExpiry} {
		if err := b.store.Clear(ctx, slot); err != nil {
			b.logger.Warn("clear cached service token failed", "slot", slot, "error", err)
		}
	}
}

func (b *TokenBroker) persist(ctx context.Context, issued ports.ServiceToken) {
	if err := b.store.Set(ctx, domain.SlotService, issued.Token); err != nil {
		b.logger.Debug("persist service token failed", "error", err)
		return
	}
	if err := b.store.Set(ctx, domain.SlotServiceExpiry, issued.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
		b.logger.Debug("persist service token expiry failed", "error", err)
	}
}
