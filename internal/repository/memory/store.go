// Package memory holds an in-process record store with the same conditional
// write semantics as the DynamoDB adapters. Used for local runs and tests.
package memory

import (
	"sort"
	"sync"

	"karmahub/internal/domain"
	repositoryIface "karmahub/internal/repository/iface"
)

// Store keeps every table in maps guarded by one lock, so each conditional
// write is atomic with respect to all others
type Store struct {
	mu sync.Mutex

	jobs            map[string]domain.Job
	applications    map[string]domain.JobApplication
	applicationKeys map[string]string
	tickets         map[string]domain.JobTicket
	ratings         map[string]domain.Rating
	profiles        map[string]domain.Profile
	activity        map[string]domain.ActivityLogEntry

	faults map[string]error
	calls  map[string]int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		jobs:            make(map[string]domain.Job),
		applications:    make(map[string]domain.JobApplication),
		applicationKeys: make(map[string]string),
		tickets:         make(map[string]domain.JobTicket),
		ratings:         make(map[string]domain.Rating),
		profiles:        make(map[string]domain.Profile),
		activity:        make(map[string]domain.ActivityLogEntry),
		faults:          make(map[string]error),
		calls:           make(map[string]int),
	}
}

// InjectFault makes every call of op fail with err until ClearFault is called
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) ClearFault(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, op)
}

// Calls returns how many times op was invoked, failed calls included
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records the call and returns the injected fault, if any. Caller holds the lock.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.faults[op]
}

func (s *Store) Jobs() repositoryIface.JobRepository {
	return &jobStore{s}
}

func (s *Store) Applications() repositoryIface.ApplicationRepository {
	return &applicationStore{s}
}

func (s *Store) Tickets() repositoryIface.TicketRepository {
	return &ticketStore{s}
}

func (s *Store) Settlement() repositoryIface.SettlementRepository {
	return &settlementStore{s}
}

func (s *Store) Ratings() repositoryIface.RatingRepository {
	return &ratingStore{s}
}

func (s *Store) Profiles() repositoryIface.ProfileRepository {
	return &profileStore{s}
}

func (s *Store) ActivityLog() repositoryIface.ActivityLogRepository {
	return &activityStore{s}
}

// newestFirst sorts by created_at descending, breaking ties by id for a stable order
func newestFirst[T any](items []*T, createdAt func(*T) int64, id func(*T) string) []*T {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if ci != cj {
			return ci > cj
		}
		return id(items[i]) > id(items[j])
	})
	return items
}
