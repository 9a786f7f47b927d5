package ports

import (
	"context"
	"time"

	"github.com/bnema/nlsh/internal/domain"
)

type DeviceAuthorizer interface {
	RequestDeviceCode(ctx context.Context) (domain.DeviceCode, error)
	// PollForToken returns only on success or when ctx is done.
	PollForToken(ctx context.Context, deviceCode string, interval time.Duration) (string, error)
}
