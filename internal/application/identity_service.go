package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

// IdentityService runs the device login and manages the stored identity.
type IdentityService struct {
	authorizer ports.DeviceAuthorizer
	store      ports.CredentialStore
	logger     *slog.Logger
}

func NewIdentityService(authorizer ports.DeviceAuthorizer, store ports.CredentialStore, logger *slog.Logger) *IdentityService {
	if logger == nil {
		logger = slog.Default()
	}

	return &IdentityService{authorizer: authorizer, store: store, logger: logger}
}

// Login requests a device code, hands it to show, and waits until the user
// authorizes or the code expires. The new identity replaces any cached
// service token.
func (s *IdentityService) Login(ctx context.Context, show func(domain.DeviceCode)) (string, error) {
	code, err := s.authorizer.RequestDeviceCode(ctx)
	if err != nil {
		return "", err
	}
	if show != nil {
		show(code)
	}

	pollCtx := ctx
	if code.ExpiresIn > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, code.ExpiresIn)
		defer cancel()
	}

	token, err := s.authorizer.PollForToken(pollCtx, code.DeviceCode, code.Interval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", domain.ErrDeviceCodeExpired
		}
		return "", fmt.Errorf("wait for device authorization: %w", err)
	}

	if err := s.store.Set(ctx, domain.SlotIdentity, token); err != nil {
		return "", fmt.Errorf("store identity token: %w", err)
	}
	for _, slot := range []domain.CredentialSlot{domain.SlotService, domain.SlotServiceExpiry} {
		if err := s.store.Clear(ctx, slot); err != nil {
			s.logger.Warn("clear previous service token failed", "slot", slot, "error", err)
		}
	}

	return token, nil
}

// IdentityToken returns the stored identity or domain.ErrNotLoggedIn.
func (s *IdentityService) IdentityToken(ctx context.Context) (string, error) {
	token, ok := s.store.Get(ctx, domain.SlotIdentity)
	if !ok || token == "" {
		return "", domain.ErrNotLoggedIn
	}
	return token, nil
}

func (s *IdentityService) Status(ctx context.Context) domain.CredentialRecord {
	return s.store.Load(ctx)
}

func (s *IdentityService) Logout(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}
