// internal/activities/registry.go
package activities

import (
	"fmt"
	"slices"
	"sync"

	"mergington-activities/internal/common/errors"
	"mergington-activities/pkg/registry"
)

// Registry is the in-memory set of activities. Membership checks and the
// mutation that follows them happen under one lock.
type Registry struct {
	mu              sync.RWMutex
	activities      map[string]*ActivityDetails
	enforceCapacity bool
}

func NewRegistry(seed *registry.ActivityRegistry, enforceCapacity bool) *Registry {
	r := &Registry{
		activities:      make(map[string]*ActivityDetails, len(seed.Activities)),
		enforceCapacity: enforceCapacity,
	}
	for _, a := range seed.Activities {
		details := ActivityDetails{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    a.Participants,
		}.clone()
		r.activities[a.Name] = &details
	}
	return r
}

// List returns a copy of every activity keyed by name.
func (r *Registry) List() map[string]ActivityDetails {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ActivityDetails, len(r.activities))
	for name, details := range r.activities {
		out[name] = details.clone()
	}
	return out
}

// Get returns a copy of one activity.
func (r *Registry) Get(name string) (ActivityDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	details, ok := r.activities[name]
	if !ok {
		return ActivityDetails{}, errors.NewActivityNotFoundError(name)
	}
	return details.clone(), nil
}

func (r *Registry) Signup(name, email string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	details, ok := r.activities[name]
	if !ok {
		return nil, errors.NewActivityNotFoundError(name)
	}
	if slices.Contains(details.Participants, email) {
		return nil, errors.NewAlreadySignedUpError(name, email)
	}
	if r.enforceCapacity && len(details.Participants) >= details.MaxParticipants {
		return nil, errors.NewActivityFullError(name, details.MaxParticipants)
	}

	details.Participants = append(details.Participants, email)
	return &Result{
		Message:          fmt.Sprintf("Signed up %s for %s", email, name),
		Activity:         name,
		Email:            email,
		ParticipantCount: len(details.Participants),
	}, nil
}

func (r *Registry) Unregister(name, email string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	details, ok := r.activities[name]
	if !ok {
		return nil, errors.NewActivityNotFoundError(name)
	}
	idx := slices.Index(details.Participants, email)
	if idx < 0 {
		return nil, errors.NewNotSignedUpError(name, email)
	}

	details.Participants = slices.Delete(details.Participants, idx, idx+1)
	return &Result{
		Message:          fmt.Sprintf("Unregistered %s from %s", email, name),
		Activity:         name,
		Email:            email,
		ParticipantCount: len(details.Participants),
	}, nil
}

// Counts returns the participant count per activity.
func (r *Registry) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(r.activities))
	for name, details := range r.activities {
		out[name] = len(details.Participants)
	}
	return out
}
