// Package session keeps the authenticated identity and its bearer token in
// the local key/value store. Both entries are always written and removed
// together, so an identity is present if and only if a token is.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ewaste/internal/dbx"
	"github.com/dmitrijs2005/ewaste/internal/logging"
)

var ErrEmptyToken = errors.New("session token is empty")

// Store is the single source of truth for "who is logged in".
type Store struct {
	db       *sql.DB
	tokenKey string
	userKey  string
	log      logging.Logger
}

// NewStore returns a Store whose keys are namespaced by prefix
// ("<prefix>-token" and "<prefix>-user").
func NewStore(db *sql.DB, prefix string, log logging.Logger) *Store {
	return &Store{
		db:       db,
		tokenKey: prefix + "-token",
		userKey:  prefix + "-user",
		log:      log,
	}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Current reconstructs the identity from storage. It never fails: a read
// error yields no identity, and inconsistent or malformed entries are purged.
func (s *Store) Current(ctx context.Context) (models.Identity, bool) {
	repo := s.repo(s.db)

	token, err := repo.Get(ctx, s.tokenKey)
	if err != nil {
		s.log.Error(ctx, "read session token", "error", err)
		return models.Identity{}, false
	}
	raw, err := repo.Get(ctx, s.userKey)
	if err != nil {
		s.log.Error(ctx, "read session identity", "error", err)
		return models.Identity{}, false
	}

	if token == nil && raw == nil {
		return models.Identity{}, false
	}

	identity, err := decodeIdentity(token, raw)
	if err != nil {
		s.log.Warn(ctx, "purging corrupt session", "reason", err)
		if err := s.Clear(ctx); err != nil {
			s.log.Error(ctx, "purge corrupt session", "error", err)
		}
		return models.Identity{}, false
	}
	return identity, true
}

func decodeIdentity(token, raw []byte) (models.Identity, error) {
	if len(token) == 0 {
		return models.Identity{}, errors.New("identity without token")
	}
	if raw == nil {
		return models.Identity{}, errors.New("token without identity")
	}

	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return models.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if err := identity.Validate(); err != nil {
		return models.Identity{}, err
	}
	return identity.WithDefaults(), nil
}

// Token returns the stored bearer token or "".
func (s *Store) Token(ctx context.Context) string {
	token, err := s.repo(s.db).Get(ctx, s.tokenKey)
	if err != nil {
		s.log.Error(ctx, "read session token", "error", err)
		return ""
	}
	return string(token)
}

// Set replaces any prior session with token and identity in one transaction.
func (s *Store) Set(ctx context.Context, token string, identity models.Identity) error {
	if token == "" {
		return ErrEmptyToken
	}
	identity = identity.WithDefaults()
	if err := identity.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, s.tokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, s.userKey, raw)
	})
}

// Clear removes token and identity in one transaction. Clearing an empty
// store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, s.tokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, s.userKey)
	})
}
