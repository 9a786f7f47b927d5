package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

func statusCode(err error) (int, bool) {
	var statusErr *ports.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

func isTransport(err error) bool {
	return errors.Is(err, ports.ErrTransport) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func isAuthRejection(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// classifyIssueFailure maps a failed service-token exchange.
func classifyIssueFailure(err error) *domain.Error {
	if code, ok := statusCode(err); ok {
		switch {
		case isAuthRejection(code):
			return domain.NewError(domain.KindIdentityExpired, err)
		case code == http.StatusTooManyRequests:
			return domain.NewError(domain.KindRateLimited, err)
		case code >= http.StatusInternalServerError:
			return domain.NewError(domain.KindServiceUnavailable, err)
		default:
			return domain.NewError(domain.KindAuthFailed, err)
		}
	}
	if isTransport(err) {
		return domain.NewError(domain.KindTransportUnavailable, err)
	}
	return domain.NewError(domain.KindAuthFailed, err)
}

// classifyCompletionFailure maps a failed completion call. It differs from
// token exchange in that 400 is an invalid request and auth rejections point
// at the service token rather than the identity.
func classifyCompletionFailure(err error) *domain.Error {
	if code, ok := statusCode(err); ok {
		switch {
		case isAuthRejection(code):
			return domain.NewError(domain.KindServiceTokenExpired, err)
		case code == http.StatusTooManyRequests:
			return domain.NewError(domain.KindRateLimited, err)
		case code >= http.StatusInternalServerError:
			return domain.NewError(domain.KindServiceUnavailable, err)
		default:
			return domain.NewError(domain.KindInvalidRequest, err)
		}
	}
	if isTransport(err) {
		return domain.NewError(domain.KindTransportUnavailable, err)
	}
	return domain.NewError(domain.KindServiceUnavailable, err)
}

// translateError is the single exit point for suggestion failures. Auth
// expiry errors pass through untouched so callers can re-authenticate.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var classified *domain.Error
	if !errors.As(err, &classified) {
		if isTransport(err) {
			return domain.NewError(domain.KindTransportUnavailable, err)
		}
		return domain.NewError(domain.KindServiceUnavailable, err)
	}

	switch classified.Kind {
	case domain.KindIdentityExpired, domain.KindServiceTokenExpired:
		return classified
	}
	return &domain.Error{
		Kind:    classified.Kind,
		Message: domain.MessageFor(classified.Kind),
		Err:     classified.Err,
	}
}
