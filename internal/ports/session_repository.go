package ports

import (
	"context"

	"github.com/bnema/nlsh/internal/domain"
)

type SessionRepository interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, id string) error
}
