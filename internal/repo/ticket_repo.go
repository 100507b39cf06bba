package repo

import (
	"context"
	"fmt"
	"strings"

	dom "Ticketing/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketPatch is the set of fields an update may change. nil = leave as is.
// Every present field becomes exactly one positional assignment clause.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
}

// Empty reports whether the patch carries no fields at all.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Status == nil
}

// TicketStats holds the aggregate counts for the stats endpoint.
type TicketStats struct {
	Total      int
	Open       int
	InProgress int
	Closed     int
	High       int
	Medium     int
	Low        int
}

// TicketRepo provides ticket persistence.
type TicketRepo interface {
	Create(ctx context.Context, t dom.Ticket) (dom.Ticket, error)
	GetByID(ctx context.Context, id int64) (dom.Ticket, error)
	List(ctx context.Context, f ListFilter) ([]dom.Ticket, error)
	Update(ctx context.Context, id int64, patch TicketPatch) (dom.Ticket, error)
	Delete(ctx context.Context, id int64) (dom.Ticket, error)
	Stats(ctx context.Context) (TicketStats, error)
	Ping(ctx context.Context) error
}

// PGTicketRepo implements TicketRepo with Postgres.
type PGTicketRepo struct {
	db *pgxpool.Pool
}

// NewPGTicketRepo returns a new PGTicketRepo.
func NewPGTicketRepo(db *pgxpool.Pool) *PGTicketRepo {
	return &PGTicketRepo{db: db}
}

func (r *PGTicketRepo) Create(ctx context.Context, t dom.Ticket) (dom.Ticket, error) {
	query := `
		INSERT INTO tickets (title, description, priority, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + ticketColumns
	var out dom.Ticket
	err := r.db.QueryRow(ctx, query, t.Title, t.Description, t.Priority, t.Status).Scan(
		&out.ID, &out.Title, &out.Description, &out.Priority, &out.Status,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTicketRepo) GetByID(ctx context.Context, id int64) (dom.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	var t dom.Ticket
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTicketRepo) List(ctx context.Context, f ListFilter) ([]dom.Ticket, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Ticket
	for rows.Next() {
		var t dom.Ticket
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// buildUpdateQuery emits one assignment per present patch field, appends the
// updated_at refresh, and binds the id as the final parameter.
func buildUpdateQuery(id int64, patch TicketPatch) (string, []any) {
	var sets []string
	var args []any
	n := 1

	add := func(column string, value string) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), n, ticketColumns)
	return query, args
}

func (r *PGTicketRepo) Update(ctx context.Context, id int64, patch TicketPatch) (dom.Ticket, error) {
	query, args := buildUpdateQuery(id, patch)
	var t dom.Ticket
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTicketRepo) Delete(ctx context.Context, id int64) (dom.Ticket, error) {
	query := `DELETE FROM tickets WHERE id = $1 RETURNING ` + ticketColumns
	var t dom.Ticket
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTicketRepo) Stats(ctx context.Context) (TicketStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'open') AS open,
			COUNT(*) FILTER (WHERE status = 'inprogress') AS inprogress,
			COUNT(*) FILTER (WHERE status = 'closed') AS closed,
			COUNT(*) FILTER (WHERE priority = 'high') AS high,
			COUNT(*) FILTER (WHERE priority = 'medium') AS medium,
			COUNT(*) FILTER (WHERE priority = 'low') AS low
		FROM tickets`
	var s TicketStats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.Total, &s.Open, &s.InProgress, &s.Closed, &s.High, &s.Medium, &s.Low,
	)
	return s, err
}

// Ping probes store reachability with a trivial query.
func (r *PGTicketRepo) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}
