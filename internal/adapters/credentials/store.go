package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

const BlobKey = "credentials.json"

var slotKeys = map[domain.CredentialSlot]string{
	domain.SlotIdentity:      "githubToken",
	domain.SlotService:       "copilotToken",
	domain.SlotServiceExpiry: "copilotTokenExpiresAt",
}

// Store maps credential slots onto one JSON blob. Every mutation re-reads the
// blob and rewrites it whole, keeping keys it does not own. It assumes a
// single writer process.
type Store struct {
	blobs  ports.BlobStore
	logger *slog.Logger
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(blobs ports.BlobStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{blobs: blobs, logger: logger}
}

// Get returns false when the blob or slot is missing or unreadable.
func (s *Store) Get(ctx context.Context, slot domain.CredentialSlot) (string, bool) {
	key, ok := slotKeys[slot]
	if !ok {
		return "", false
	}

	fields, err := s.readBlob(ctx)
	if err != nil {
		s.logger.Debug("credential blob unavailable", "slot", slot, "error", err)
		return "", false
	}

	raw, ok := fields[key]
	if !ok {
		return "", false
	}

	if slot == domain.SlotServiceExpiry {
		expiresAt, err := parseExpiry(raw)
		if err != nil {
			s.logger.Debug("credential expiry unreadable", "error", err)
			return "", false
		}
		return expiresAt.UTC().Format(time.RFC3339), true
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return "", false
	}

	return value, true
}

func (s *Store) Set(ctx context.Context, slot domain.CredentialSlot, value string) error {
	key, ok := slotKeys[slot]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSlot, slot)
	}

	if slot == domain.SlotServiceExpiry {
		expiresAt, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("parse service token expiry: %w", err)
		}
		value = expiresAt.UTC().Format(time.RFC3339)
	}

	fields, err := s.readBlob(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		fields = map[string]json.RawMessage{}
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode credential %q: %w", slot, err)
	}
	fields[key] = encoded

	return s.writeBlob(ctx, fields)
}

// Clear is a no-op when the blob is missing or unreadable. A failed rewrite
// is a storage error.
func (s *Store) Clear(ctx context.Context, slot domain.CredentialSlot) error {
	key, ok := slotKeys[slot]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSlot, slot)
	}

	fields, err := s.readBlob(ctx)
	if err != nil {
		s.logger.Debug("credential blob unavailable, nothing to clear", "slot", slot, "error", err)
		return nil
	}

	if _, ok := fields[key]; !ok {
		return nil
	}
	delete(fields, key)

	if err := s.writeBlob(ctx, fields); err != nil {
		return domain.NewError(domain.KindStorage, err)
	}

	return nil
}

// ClearAll destroys the whole record.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, BlobKey); err != nil {
		return domain.NewError(domain.KindStorage, fmt.Errorf("delete credential blob: %w", err))
	}

	return nil
}

// Load returns the record, dropping a service token that has no expiry and
// vice versa.
func (s *Store) Load(ctx context.Context) domain.CredentialRecord {
	var record domain.CredentialRecord

	record.IdentityToken, _ = s.Get(ctx, domain.SlotIdentity)

	token, hasToken := s.Get(ctx, domain.SlotService)
	rawExpiry, hasExpiry := s.Get(ctx, domain.SlotServiceExpiry)
	if !hasToken || !hasExpiry {
		return record
	}

	expiresAt, err := time.Parse(time.RFC3339, rawExpiry)
	if err != nil {
		return record
	}

	record.ServiceToken = token
	record.ServiceTokenExpiry = expiresAt

	return record
}

func (s *Store) readBlob(ctx context.Context) (map[string]json.RawMessage, error) {
	data, err := s.blobs.Get(ctx, BlobKey)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode credential blob: %w", err)
	}
	for key, raw := range fields {
		if strings.TrimSpace(string(raw)) == "null" {
			delete(fields, key)
		}
	}

	return fields, nil
}

func (s *Store) writeBlob(ctx context.Context, fields map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential blob: %w", err)
	}

	if err := s.blobs.Put(ctx, BlobKey, append(data, '\n')); err != nil {
		return fmt.Errorf("write credential blob: %w", err)
	}

	return nil
}

// parseExpiry accepts an ISO-8601 string or a number of seconds since the epoch.
func parseExpiry(raw json.RawMessage) (time.Time, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if parsed, err := time.Parse(layout, text); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unsupported expiry format %q", text)
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return time.Time{}, errors.New("expiry is neither a string nor a number")
	}

	return time.Unix(int64(seconds), 0).UTC(), nil
}
