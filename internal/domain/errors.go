package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSlot     = errors.New("invalid credential slot")
)

// Kind is the stable classification of a suggestion-pipeline failure.
type Kind string

const (
	KindTransportUnavailable Kind = "transport_unavailable"
	KindRateLimited          Kind = "rate_limited"
	KindServiceUnavailable   Kind = "service_unavailable"
	KindInvalidRequest       Kind = "invalid_request"
	KindIdentityExpired      Kind = "identity_expired"
	KindServiceTokenExpired  Kind = "service_token_expired"
	KindEmptyResult          Kind = "empty_result"
	KindAuthFailed           Kind = "auth_failed"
	KindStorage              Kind = "storage"
)

var userMessages = map[Kind]string{
	KindTransportUnavailable: "could not reach the Copilot service, check your network connection",
	KindRateLimited:          "rate limited by the Copilot service, wait a moment and try again",
	KindServiceUnavailable:   "the Copilot service is temporarily unavailable, try again later",
	KindInvalidRequest:       "the suggestion request was rejected as invalid",
	KindIdentityExpired:      "your GitHub login is no longer valid, run `nlsh login` again",
	KindServiceTokenExpired:  "the Copilot session token was rejected, try the request again",
	KindEmptyResult:          "no suggestion was produced for that request",
	KindAuthFailed:           "could not obtain a Copilot token, check that your account has Copilot access",
	KindStorage:              "could not update the local credential store",
}

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrTransportUnavailable = &Error{Kind: KindTransportUnavailable}
	ErrRateLimited          = &Error{Kind: KindRateLimited}
	ErrServiceUnavailable   = &Error{Kind: KindServiceUnavailable}
	ErrInvalidRequest       = &Error{Kind: KindInvalidRequest}
	ErrIdentityExpired      = &Error{Kind: KindIdentityExpired}
	ErrServiceTokenExpired  = &Error{Kind: KindServiceTokenExpired}
	ErrEmptyResult          = &Error{Kind: KindEmptyResult}
	ErrAuthFailed           = &Error{Kind: KindAuthFailed}
	ErrStorage              = &Error{Kind: KindStorage}
)

// Error is a classified failure. Error() returns only the user-safe message;
// the underlying cause is available through Unwrap and Detail.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: MessageFor(kind), Err: cause}
}

func MessageFor(kind Kind) string {
	if message, ok := userMessages[kind]; ok {
		return message
	}
	return "unexpected error"
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return MessageFor(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Detail includes the wrapped cause. Only shown in verbose mode.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Error()
	}
	return fmt.Sprintf("%s: %v", e.Error(), e.Err)
}

// NeedsReauth is true only when the identity token itself was rejected.
func (e *Error) NeedsReauth() bool {
	return e.Kind == KindIdentityExpired
}

func KindOf(err error) (Kind, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return "", false
}
