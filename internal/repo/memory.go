package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	dom "Ticketing/internal/domain"

	"github.com/jackc/pgx/v5"
)

// MemoryTicketRepo is an in-memory TicketRepo used in tests and local runs
// without a database. It mirrors the Postgres behavior, including returning
// pgx.ErrNoRows for missing ids.
type MemoryTicketRepo struct {
	mu     sync.RWMutex
	byID   map[int64]dom.Ticket
	nextID int64
}

// NewMemoryTicketRepo returns an empty MemoryTicketRepo.
func NewMemoryTicketRepo() *MemoryTicketRepo {
	return &MemoryTicketRepo{byID: make(map[int64]dom.Ticket), nextID: 1}
}

func (r *MemoryTicketRepo) Create(ctx context.Context, t dom.Ticket) (dom.Ticket, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++ // ids are never reused, even after delete
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.byID[t.ID] = t
	return t, nil
}

func (r *MemoryTicketRepo) GetByID(ctx context.Context, id int64) (dom.Ticket, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return dom.Ticket{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *MemoryTicketRepo) List(ctx context.Context, f ListFilter) ([]dom.Ticket, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []dom.Ticket
	search := strings.ToLower(f.Search)
	for _, t := range r.byID {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Status != "" && f.Status != FilterAll && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && f.Priority != FilterAll && t.Priority != f.Priority {
			continue
		}
		list = append(list, t)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})

	if f.Offset >= len(list) {
		return nil, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *MemoryTicketRepo) Update(ctx context.Context, id int64, patch TicketPatch) (dom.Ticket, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return dom.Ticket{}, pgx.ErrNoRows
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now().UTC()
	r.byID[id] = t
	return t, nil
}

func (r *MemoryTicketRepo) Delete(ctx context.Context, id int64) (dom.Ticket, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return dom.Ticket{}, pgx.ErrNoRows
	}
	delete(r.byID, id)
	return t, nil
}

func (r *MemoryTicketRepo) Stats(ctx context.Context) (TicketStats, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var s TicketStats
	for _, t := range r.byID {
		s.Total++
		switch t.Status {
		case dom.StatusOpen:
			s.Open++
		case dom.StatusInProgress:
			s.InProgress++
		case dom.StatusClosed:
			s.Closed++
		}
		switch t.Priority {
		case dom.PriorityHigh:
			s.High++
		case dom.PriorityMedium:
			s.Medium++
		case dom.PriorityLow:
			s.Low++
		}
	}
	return s, nil
}

func (r *MemoryTicketRepo) Ping(ctx context.Context) error {
	_ = ctx
	return nil
}
