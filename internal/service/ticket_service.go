package service

import (
	"context"
	"errors"
	"strings"

	"Ticketing/internal/cache"
	dom "Ticketing/internal/domain"
	"Ticketing/internal/repo"
	"Ticketing/internal/utils"
	"Ticketing/internal/validation"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// TicketService orchestrates sanitization, validation, persistence and
// caching for ticket operations.
type TicketService struct {
	repo  repo.TicketRepo
	cache *cache.TicketCache
	sf    singleflight.Group
}

// NewTicketService creates a TicketService. If c is nil, caching is disabled.
func NewTicketService(r repo.TicketRepo, c *cache.TicketCache) *TicketService {
	return &TicketService{repo: r, cache: c}
}

// ListResult is a page of tickets plus the pagination metadata the list
// endpoint reports.
type ListResult struct {
	Tickets    []dom.Ticket
	Total      int
	Page       int
	TotalPages int
}

// Create sanitizes and validates the input, forces status to "open", and
// persists the ticket. An empty priority defaults to "medium".
func (s *TicketService) Create(ctx context.Context, title, description, priority string) (dom.Ticket, error) {
	title = validation.Sanitize(title)
	description = validation.Sanitize(description)
	// Only an absent priority defaults; a supplied whitespace-only one trims
	// to "" and fails the enum check below.
	if priority == "" {
		priority = dom.PriorityMedium
	} else {
		priority = strings.TrimSpace(strings.ToLower(priority))
	}

	if errs := validation.Validate(validation.TicketInput{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
	}, false); len(errs) > 0 {
		return dom.Ticket{}, ValidationError(errs)
	}

	t, err := s.repo.Create(ctx, dom.Ticket{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      dom.StatusOpen,
	})
	if err != nil {
		return dom.Ticket{}, classify(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// GetByID returns a single ticket.
func (s *TicketService) GetByID(ctx context.Context, id int64) (dom.Ticket, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Ticket{}, classify(err)
	}
	return t, nil
}

// List returns the filtered, paginated ticket page with its metadata.
func (s *TicketService) List(ctx context.Context, f repo.ListFilter) (ListResult, error) {
	list, err := s.listTickets(ctx, f)
	if err != nil {
		return ListResult{}, classify(err)
	}

	// TODO: total is the returned page row count, not a COUNT(*) over the
	// filtered set, so totalPages collapses to 1 whenever a page fills.
	// Needs a separate count query once the client is ready for it.
	total := len(list)
	page := 1
	totalPages := 0
	if f.Limit > 0 {
		page = f.Offset/f.Limit + 1
		totalPages = (total + f.Limit - 1) / f.Limit
	}
	return ListResult{
		Tickets:    list,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *TicketService) listTickets(ctx context.Context, f repo.ListFilter) ([]dom.Ticket, error) {
	if s.cache == nil {
		return s.repo.List(ctx, f)
	}
	key := cache.ListKey(f)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, key); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, key, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Ticket), nil
}

// Update applies a partial update. Absent fields stay untouched; updated_at
// refreshes on every successful call. Existence is checked before the
// supplied fields are validated.
func (s *TicketService) Update(ctx context.Context, id int64, title, description, priority, status *string) (dom.Ticket, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return dom.Ticket{}, classify(err)
	}

	var patch repo.TicketPatch
	if title != nil {
		v := validation.Sanitize(*title)
		patch.Title = &v
	}
	if description != nil {
		v := validation.Sanitize(*description)
		patch.Description = &v
	}
	if priority != nil {
		v := strings.TrimSpace(strings.ToLower(*priority))
		patch.Priority = &v
	}
	if status != nil {
		v := strings.TrimSpace(strings.ToLower(*status))
		patch.Status = &v
	}

	if errs := validation.Validate(validation.TicketInput{
		Title:       patch.Title,
		Description: patch.Description,
		Priority:    patch.Priority,
		Status:      patch.Status,
	}, true); len(errs) > 0 {
		return dom.Ticket{}, ValidationError(errs)
	}

	if patch.Empty() {
		return dom.Ticket{}, ErrNoFields
	}

	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Ticket{}, classify(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Delete removes the ticket permanently and returns the deleted row.
func (s *TicketService) Delete(ctx context.Context, id int64) (dom.Ticket, error) {
	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		return dom.Ticket{}, classify(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Stats returns aggregate counts by status and priority plus the grand total.
func (s *TicketService) Stats(ctx context.Context) (repo.TicketStats, error) {
	if s.cache == nil {
		st, err := s.repo.Stats(ctx)
		if err != nil {
			return repo.TicketStats{}, classify(err)
		}
		return st, nil
	}
	v, err, _ := s.sf.Do("stats", func() (interface{}, error) {
		if st, err := s.cache.GetStats(ctx); err == nil && st != nil {
			return *st, nil
		}
		st, err := s.repo.Stats(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetStats(ctx, st)
		return st, nil
	})
	if err != nil {
		return repo.TicketStats{}, classify(err)
	}
	return v.(repo.TicketStats), nil
}

// Health probes store reachability.
func (s *TicketService) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// classify maps store-reported failures onto the error taxonomy. Anything
// unrecognized passes through and surfaces as an internal error.
func classify(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case utils.IsPGUniqueViolation(err):
		return errors.Join(ErrConflict, err)
	case utils.IsPGUnavailable(err):
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

func (s *TicketService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}
