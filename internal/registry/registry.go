// Package registry holds the in-memory activity catalog and the roster
// operations performed on it.
package registry

import (
	"fmt"
	"strings"
	"sync"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
)

const (
	OperationEnroll   = "enroll"
	OperationWithdraw = "withdraw"
)

type Options struct {
	// EnforceCapacity rejects signups once max_participants is reached.
	// Off by default: max_participants is informational.
	EnforceCapacity bool
}

// Registry maps activity names to their records. All methods are safe for
// concurrent use; each roster change is one check-then-mutate under the
// write lock.
type Registry struct {
	mu         sync.RWMutex
	seed       []Entry
	order      []string
	activities map[string]*Activity
	opts       Options
	logger     logger.Logger
}

// New validates seed and builds a registry from a private copy of it.
func New(seed []Entry, opts Options, log logger.Logger) (*Registry, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	r := &Registry{
		seed:   cloneEntries(seed),
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "registry"}),
	}
	r.load()

	r.logger.Info("registry seeded", map[string]interface{}{
		"activities":      len(r.order),
		"enforceCapacity": opts.EnforceCapacity,
	})
	return r, nil
}

func validateSeed(seed []Entry) error {
	seen := make(map[string]struct{}, len(seed))
	for _, e := range seed {
		if strings.TrimSpace(e.Name) == "" {
			return apperrors.NewCatalogInvalidError("activity name must not be empty")
		}
		if _, dup := seen[e.Name]; dup {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("duplicate activity %q", e.Name))
		}
		seen[e.Name] = struct{}{}

		if e.Activity.MaxParticipants <= 0 {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("activity %q: max_participants must be positive", e.Name))
		}
		emails := make(map[string]struct{}, len(e.Activity.Participants))
		for _, p := range e.Activity.Participants {
			if _, dup := emails[p]; dup {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("activity %q: duplicate participant %q", e.Name, p))
			}
			emails[p] = struct{}{}
		}
	}
	return nil
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = Entry{Name: e.Name, Activity: e.Activity.clone()}
	}
	return out
}

// load replaces the live state with a copy of the seed. Callers hold mu or
// own r exclusively.
func (r *Registry) load() {
	r.order = make([]string, 0, len(r.seed))
	r.activities = make(map[string]*Activity, len(r.seed))
	for _, e := range r.seed {
		a := e.Activity.clone()
		r.order = append(r.order, e.Name)
		r.activities[e.Name] = &a
		metrics.Participants.WithLabelValues(e.Name).Set(float64(len(a.Participants)))
	}
}

// List returns a deep copy of every activity.
func (r *Registry) List() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		names:      make([]string, len(r.order)),
		activities: make(map[string]Activity, len(r.order)),
	}
	copy(snap.names, r.order)
	for name, a := range r.activities {
		snap.activities[name] = a.clone()
	}
	return snap
}

// Get returns a copy of one activity.
func (r *Registry) Get(name string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return Activity{}, apperrors.NewActivityNotFoundError(name)
	}
	return a.clone(), nil
}

// Enroll appends email to the activity's participants.
func (r *Registry) Enroll(name, email string) (*Confirmation, error) {
	if email == "" {
		return nil, r.reject(OperationEnroll, apperrors.NewInvalidInputError("email must not be empty"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return nil, r.reject(OperationEnroll, apperrors.NewActivityNotFoundError(name))
	}
	if a.indexOf(email) >= 0 {
		return nil, r.reject(OperationEnroll, apperrors.NewAlreadySignedUpError(name, email))
	}
	if r.opts.EnforceCapacity && len(a.Participants) >= a.MaxParticipants {
		return nil, r.reject(OperationEnroll, apperrors.NewActivityFullError(name, a.MaxParticipants))
	}

	a.Participants = append(a.Participants, email)

	metrics.Signups.WithLabelValues(name).Inc()
	metrics.Participants.WithLabelValues(name).Set(float64(len(a.Participants)))
	r.logger.Info("participant enrolled", map[string]interface{}{
		"activity":     name,
		"email":        email,
		"participants": len(a.Participants),
	})

	return &Confirmation{Message: fmt.Sprintf("Signed up %s for %s", email, name)}, nil
}

// Withdraw removes email from the activity's participants, keeping the
// order of the remaining entries.
func (r *Registry) Withdraw(name, email string) (*Confirmation, error) {
	if email == "" {
		return nil, r.reject(OperationWithdraw, apperrors.NewInvalidInputError("email must not be empty"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return nil, r.reject(OperationWithdraw, apperrors.NewActivityNotFoundError(name))
	}
	idx := a.indexOf(email)
	if idx < 0 {
		return nil, r.reject(OperationWithdraw, apperrors.NewNotSignedUpError(name, email))
	}

	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)

	metrics.Unregistrations.WithLabelValues(name).Inc()
	metrics.Participants.WithLabelValues(name).Set(float64(len(a.Participants)))
	r.logger.Info("participant withdrawn", map[string]interface{}{
		"activity":     name,
		"email":        email,
		"participants": len(a.Participants),
	})

	return &Confirmation{Message: fmt.Sprintf("Unregistered %s from %s", email, name)}, nil
}

// Reset restores the seed state. Intended for test harnesses; the HTTP
// surface never calls it.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.load()
	r.logger.Debug("registry reset", map[string]interface{}{"activities": len(r.order)})
}

func (r *Registry) reject(operation string, err *apperrors.StandardError) error {
	metrics.Rejections.WithLabelValues(operation, string(err.Code)).Inc()
	return err
}
