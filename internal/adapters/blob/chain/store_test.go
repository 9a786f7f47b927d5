package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const credentialsKey = "nlsh/credentials.json"

type mockBlobStore struct {
	mock.Mock
}

func newMockBlobStore(t *testing.T) *mockBlobStore {
	m := &mockBlobStore{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

func (m *mockBlobStore) Put(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Get", mock.Anything, credentialsKey).Return([]byte("from-pass"), nil).Once()

	value, err := store.Get(context.Background(), credentialsKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", string(value))
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Get", mock.Anything, credentialsKey).Return(nil, errors.New("pass unavailable")).Once()
	fallback.On("Get", mock.Anything, credentialsKey).Return([]byte("from-file"), nil).Once()

	value, err := store.Get(context.Background(), credentialsKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", string(value))
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Get", mock.Anything, credentialsKey).Return(nil, errors.New("pass failed")).Once()
	fallback.On("Get", mock.Anything, credentialsKey).Return(nil, errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), credentialsKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Put", mock.Anything, credentialsKey, []byte("secret")).Return(errors.New("pass failed")).Once()
	fallback.On("Put", mock.Anything, credentialsKey, []byte("secret")).Return(nil).Once()

	err := store.Put(context.Background(), credentialsKey, []byte("secret"))
	require.NoError(t, err)
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Put", mock.Anything, credentialsKey, []byte("secret")).Return(nil).Once()

	err := store.Put(context.Background(), credentialsKey, []byte("secret"))
	require.NoError(t, err)
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Delete", mock.Anything, credentialsKey).Return(nil).Once()
	fallback.On("Delete", mock.Anything, credentialsKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), credentialsKey))
}

func TestStoreDeleteToleratesPrimaryFailureWhenFallbackSucceeds(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Delete", mock.Anything, credentialsKey).Return(errors.New("pass failed")).Once()
	fallback.On("Delete", mock.Anything, credentialsKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), credentialsKey))
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := newMockBlobStore(t)
	fallback := newMockBlobStore(t)
	store := NewStore(primary, fallback)

	primary.On("Get", mock.Anything, credentialsKey).Return(nil, context.Canceled).Once()

	_, err := store.Get(context.Background(), credentialsKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked(nil, newMockBlobStore(t))
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStoreChecked(newMockBlobStore(t), nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}
