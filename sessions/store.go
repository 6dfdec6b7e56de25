package sessions

import (
	"context"
	"encoding/json"

	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
	"github.com/jrsteele09/web-analyzer-client/kvstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the only reader and writer of the persisted session record.
type Store struct {
	storage kvstore.Storage
	key     string
	logger  zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger used to report discarded records.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a Store that keeps the record under key in storage.
func NewStore(storage kvstore.Storage, key string, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	if key == "" {
		return nil, errors.New("[NewStore] key is required")
	}
	s := &Store{storage: storage, key: key, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SaveOption adds optional fields to a saved record.
type SaveOption func(*Record)

// WithRefreshToken stores the refresh token alongside the access token.
func WithRefreshToken(refreshToken string) SaveOption {
	return func(r *Record) {
		r.RefreshToken = refreshToken
	}
}

// Save writes a complete logged-in record in a single storage call,
// replacing whatever was there. An incomplete record is rejected and the
// stored one is left as it was.
func (s *Store) Save(ctx context.Context, user UserIdentity, token, tokenType string, options ...SaveOption) error {
	record := Record{
		AccessToken: token,
		TokenType:   tokenType,
		User:        &user,
		LoggedIn:    true,
	}
	for _, opt := range options {
		opt(&record)
	}
	if !record.Valid() {
		return apperrors.Wrapf(apperrors.ErrSessionMalformed, "[Store Save] incomplete record")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrapf(err, "[Store Save] encode record")
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return apperrors.Wrapf(err, "[Store Save] write record")
	}
	return nil
}

// Load returns the stored record. Missing, unreadable, undecodable and
// partially formed records all come back as (nil, false).
func (s *Store) Load(ctx context.Context) (*Record, bool) {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session read failed, treating as absent")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Debug().Err(err).Msg("session decode failed, treating as absent")
		return nil, false
	}
	if !record.Valid() {
		s.logger.Debug().Err(apperrors.ErrSessionMalformed).Msg("session incomplete, treating as absent")
		return nil, false
	}
	return &record, true
}

// Clear removes the record. Clearing an absent record is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Remove(ctx, s.key); err != nil {
		return apperrors.Wrapf(err, "[Store Clear] remove record")
	}
	return nil
}

// AccessToken returns the stored bearer token, or "" when there is no valid
// record.
func (s *Store) AccessToken(ctx context.Context) string {
	record, ok := s.Load(ctx)
	if !ok {
		return ""
	}
	return record.AccessToken
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	record, ok := s.Load(ctx)
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	if record.RefreshToken == "" {
		return "", apperrors.ErrNoRefreshToken
	}
	return record.RefreshToken, nil
}
