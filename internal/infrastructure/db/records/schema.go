package records

import (
	"context"
	"fmt"
	"strconv"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// SchemaVersion is the layout written by this build.
//
//	0: no schemaVersion key; requests may lack "offers".
//	1: every request carries an "offers" array; non-conforming records removed.
const SchemaVersion = 1

// Migrate upgrades stored collections to SchemaVersion. It is a no-op when the
// store is already current and fails on a version newer than this build.
func Migrate(ctx context.Context, s *Store) error {
	unlock := s.lock(KeySchemaVersion)
	defer unlock()

	current, err := storedVersion(ctx, s)
	if err != nil {
		return err
	}
	if current == SchemaVersion {
		return nil
	}
	if current > SchemaVersion {
		return fmt.Errorf("migrate: stored schema version %d is newer than %d", current, SchemaVersion)
	}

	// Loading applies normalization and drops non-conforming records; saving
	// rewrites the cleaned collections.
	users := NewCollection[domain.User](s, KeyUsers, nil)
	if err := users.Update(ctx, keepAll[domain.User]); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	requests := NewCollection(s, KeyRequests, normalizeRequest)
	if err := requests.Update(ctx, keepAll[domain.ServiceRequest]); err != nil {
		return fmt.Errorf("migrate requests: %w", err)
	}

	if err := s.kv.Set(ctx, KeySchemaVersion, strconv.Itoa(SchemaVersion)); err != nil {
		return fmt.Errorf("migrate: write version: %w", err)
	}
	s.log.Info().Int("from", current).Int("to", SchemaVersion).Msg("record store migrated")
	return nil
}

func storedVersion(ctx context.Context, s *Store) (int, error) {
	raw, found, err := s.kv.Get(ctx, KeySchemaVersion)
	if err != nil {
		return 0, fmt.Errorf("migrate: read version: %w", err)
	}
	if !found {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("migrate: bad schema version %q: %w", raw, domain.ErrInvalidRecord)
	}
	return v, nil
}

func keepAll[T any](items []T) ([]T, error) {
	return items, nil
}

// Snapshot is the persisted state of the shared collections.
type Snapshot struct {
	SchemaVersion int                     `json:"schemaVersion"`
	Users         []domain.User           `json:"users"`
	Requests      []domain.ServiceRequest `json:"requests"`
}

// Dump reads the shared collections as they would be rendered.
func Dump(ctx context.Context, s *Store) (*Snapshot, error) {
	version, err := storedVersion(ctx, s)
	if err != nil {
		return nil, err
	}
	users, err := NewCollection[domain.User](s, KeyUsers, nil).Load(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := NewCollection(s, KeyRequests, normalizeRequest).Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{SchemaVersion: version, Users: users, Requests: requests}, nil
}
