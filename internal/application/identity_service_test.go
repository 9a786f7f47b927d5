package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nlsh/internal/domain"
)

type fakeAuthorizer struct {
	code        domain.DeviceCode
	codeErr     error
	token       string
	pollErr     error
	blockPoll   bool
	gotDeadline bool
	gotCode     string
	gotInterval time.Duration
}

func (a *fakeAuthorizer) RequestDeviceCode(context.Context) (domain.DeviceCode, error) {
	return a.code, a.codeErr
}

func (a *fakeAuthorizer) PollForToken(ctx context.Context, deviceCode string, interval time.Duration) (string, error) {
	_, a.gotDeadline = ctx.Deadline()
	a.gotCode = deviceCode
	a.gotInterval = interval
	if a.blockPoll {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return a.token, a.pollErr
}

func TestIdentityServiceLoginStoresTokenAndDropsServiceToken(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	store.seedServiceToken("svc-old", time.Now().Add(time.Hour))
	authorizer := &fakeAuthorizer{
		code: domain.DeviceCode{
			DeviceCode:      "dev-1",
			UserCode:        "ABCD-1234",
			VerificationURI: "https://github.com/login/device",
			Interval:        5 * time.Second,
			ExpiresIn:       15 * time.Minute,
		},
		token: "gho_new",
	}
	service := NewIdentityService(authorizer, store, nil)

	var shown domain.DeviceCode
	token, err := service.Login(context.Background(), func(code domain.DeviceCode) { shown = code })

	require.NoError(t, err)
	assert.Equal(t, "gho_new", token)
	assert.Equal(t, "ABCD-1234", shown.UserCode)
	assert.True(t, authorizer.gotDeadline)
	assert.Equal(t, "dev-1", authorizer.gotCode)
	assert.Equal(t, 5*time.Second, authorizer.gotInterval)

	record := service.Status(context.Background())
	assert.Equal(t, "gho_new", record.IdentityToken)
	assert.False(t, record.HasServiceToken())
}

func TestIdentityServiceLoginReportsExpiredDeviceCode(t *testing.T) {
	t.Parallel()

	authorizer := &fakeAuthorizer{
		code:      domain.DeviceCode{DeviceCode: "dev-1", UserCode: "X", VerificationURI: "u", Interval: time.Second, ExpiresIn: 20 * time.Millisecond},
		blockPoll: true,
	}
	store := newMemoryCredentialStore()

	_, err := NewIdentityService(authorizer, store, nil).Login(context.Background(), nil)

	require.ErrorIs(t, err, domain.ErrDeviceCodeExpired)
	_, hasIdentity := store.Get(context.Background(), domain.SlotIdentity)
	assert.False(t, hasIdentity)
}

func TestIdentityServiceLoginPropagatesCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	authorizer := &fakeAuthorizer{
		code:      domain.DeviceCode{DeviceCode: "dev-1", ExpiresIn: time.Minute},
		blockPoll: true,
	}

	_, err := NewIdentityService(authorizer, newMemoryCredentialStore(), nil).Login(ctx, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrDeviceCodeExpired)
}

func TestIdentityServiceLoginDeviceCodeFailure(t *testing.T) {
	t.Parallel()

	authorizer := &fakeAuthorizer{codeErr: errors.New("request device code: 404 Not Found")}

	_, err := NewIdentityService(authorizer, newMemoryCredentialStore(), nil).Login(context.Background(), func(domain.DeviceCode) {
		t.Fatal("show must not be called")
	})

	assert.ErrorContains(t, err, "404 Not Found")
}

func TestIdentityServiceTokenAndLogout(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	service := NewIdentityService(&fakeAuthorizer{}, store, nil)

	_, err := service.IdentityToken(context.Background())
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)

	store.values[domain.SlotIdentity] = "gho_identity"
	store.seedServiceToken("svc", time.Now().Add(time.Hour))
	token, err := service.IdentityToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gho_identity", token)

	require.NoError(t, service.Logout(context.Background()))
	assert.Equal(t, domain.CredentialRecord{}, service.Status(context.Background()))
}
