package ports

import (
	"context"

	"github.com/bnema/nlsh/internal/domain"
)

type CredentialStore interface {
	Get(ctx context.Context, slot domain.CredentialSlot) (string, bool)
	Set(ctx context.Context, slot domain.CredentialSlot, value string) error
	Clear(ctx context.Context, slot domain.CredentialSlot) error
	Load(ctx context.Context) domain.CredentialRecord
	ClearAll(ctx context.Context) error
}
