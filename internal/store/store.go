// Package store holds the flag record collection. Every operation loads the
// whole collection from a Backend and every mutation writes the whole
// collection back. There is no locking: concurrent writers race and the last
// write wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/logging"
	cosignal "github.com/newhook/flagtrack/internal/signal"
)

var (
	// ErrNotFound is returned when no flag matches an id or prefix.
	ErrNotFound = errors.New("flag not found")
	// ErrAmbiguousID is returned when a prefix matches more than one flag.
	ErrAmbiguousID = errors.New("ambiguous flag id")
	// ErrNotEmpty is returned when seeding a store that already has flags.
	ErrNotEmpty = errors.New("store already has flags")
)

// Backend persists the full ordered flag collection.
type Backend interface {
	// Load returns all flags in store order. A missing or malformed
	// document loads as an empty collection.
	Load(ctx context.Context) ([]*flag.Flag, error)
	// Save replaces the persisted collection.
	Save(ctx context.Context, flags []*flag.Flag) error
}

// Store runs flag operations against a Backend.
type Store struct {
	backend Backend
	now     func() time.Time
	newID   func() string
	history flag.HistoryMode
	policy  flag.ReminderPolicy
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides flag id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithHistoryMode selects which progress value check records keep.
func WithHistoryMode(mode flag.HistoryMode) Option {
	return func(s *Store) { s.history = mode }
}

// WithReminderPolicy overrides the reminder windows.
func WithReminderPolicy(p flag.ReminderPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
		history: flag.HistoryRaw,
		policy:  flag.DefaultReminderPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the reminder policy in use.
func (s *Store) Policy() flag.ReminderPolicy {
	return s.policy
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// NewFlag holds the user-supplied fields of a new flag.
type NewFlag struct {
	Title       string
	Description string
	TargetDate  string
	Category    string
}

// Filter restricts List results. Empty fields match everything.
type Filter struct {
	Category string
	Status   flag.Status
}

func (s *Store) load(ctx context.Context) ([]*flag.Flag, error) {
	flags, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}
	for _, f := range flags {
		f.Normalize()
	}
	return flags, nil
}

func (s *Store) save(ctx context.Context, flags []*flag.Flag) error {
	// Signals arriving mid-write cancel once the write returns.
	cosignal.BlockSignals()
	defer cosignal.UnblockSignals()

	if err := s.backend.Save(ctx, flags); err != nil {
		return fmt.Errorf("failed to save flags: %w", err)
	}
	return nil
}

// Add scores and appends a new flag.
func (s *Store) Add(ctx context.Context, nf NewFlag) (*flag.Flag, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	f := flag.New(s.newID(), nf.Title, nf.Description, nf.TargetDate, nf.Category, s.now())
	flags = append(flags, f)
	if err := s.save(ctx, flags); err != nil {
		return nil, err
	}

	logging.InfoContext(ctx, "flag added", "id", f.ID, "score", *f.FeasibilityScore)
	return f, nil
}

// All returns every flag in store order.
func (s *Store) All(ctx context.Context) ([]*flag.Flag, error) {
	return s.load(ctx)
}

// List returns flags matching filter, newest created date first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*flag.Flag, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []*flag.Flag
	for _, f := range flags {
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedDate > out[j].CreatedDate
	})
	return out, nil
}

// Get returns the flag with exactly this id.
func (s *Store) Get(ctx context.Context, id string) (*flag.Flag, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range flags {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Resolve finds a flag by full id or unique id prefix.
func (s *Store) Resolve(ctx context.Context, idOrPrefix string) (*flag.Flag, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*flag.Flag
	for _, f := range flags {
		if f.ID == idOrPrefix {
			return f, nil
		}
		if strings.HasPrefix(f.ID, idOrPrefix) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matches %d flags", ErrAmbiguousID, idOrPrefix, len(matches))
	}
}

// UpdateProgress records a progress check on the flag with exactly this id.
// It reports false, without writing, when no flag has the id.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int, notes string) (bool, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	for _, f := range flags {
		if f.ID != id {
			continue
		}
		rec := flag.ApplyProgress(f, progress, notes, s.now(), s.history)
		if err := s.save(ctx, flags); err != nil {
			return false, err
		}
		logging.InfoContext(ctx, "progress updated",
			"id", f.ID, "requested", progress, "recorded", rec.Progress, "progress", f.Progress, "status", f.Status)
		return true, nil
	}

	logging.DebugContext(ctx, "progress update for unknown flag", "id", id)
	return false, nil
}

// Delete removes the flag with exactly this id. It reports false, without
// writing, when no flag has the id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	for i, f := range flags {
		if f.ID != id {
			continue
		}
		flags = append(flags[:i], flags[i+1:]...)
		if err := s.save(ctx, flags); err != nil {
			return false, err
		}
		logging.InfoContext(ctx, "flag deleted", "id", id)
		return true, nil
	}
	return false, nil
}

// Replace overwrites the whole collection.
func (s *Store) Replace(ctx context.Context, flags []*flag.Flag) error {
	for _, f := range flags {
		f.Normalize()
	}
	return s.save(ctx, flags)
}

// Seed replaces the collection with flags. Unless force is set, a store
// that already holds flags is left alone and ErrNotEmpty is returned.
func (s *Store) Seed(ctx context.Context, flags []*flag.Flag, force bool) error {
	if !force {
		existing, err := s.load(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w (%d flags)", ErrNotEmpty, len(existing))
		}
	}
	if err := s.Replace(ctx, flags); err != nil {
		return err
	}
	logging.InfoContext(ctx, "store seeded", "flags", len(flags), "force", force)
	return nil
}

// Statistics summarises every flag.
func (s *Store) Statistics(ctx context.Context) (flag.Statistics, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return flag.Statistics{}, err
	}
	return flag.ComputeStatistics(flags), nil
}

// DueReminders returns open flags overdue for a progress check.
func (s *Store) DueReminders(ctx context.Context) ([]*flag.Flag, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.policy.DueReminders(flags, s.now()), nil
}

// UpcomingDeadlines returns open flags due within the deadline horizon.
func (s *Store) UpcomingDeadlines(ctx context.Context) ([]flag.Deadline, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.policy.UpcomingDeadlines(flags, s.now()), nil
}

// RecentlyCompleted returns flags completed within the recent window.
func (s *Store) RecentlyCompleted(ctx context.Context) ([]*flag.Flag, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.policy.RecentlyCompleted(flags, s.now()), nil
}
