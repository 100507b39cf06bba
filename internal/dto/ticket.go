package dto

import "time"

// CreateTicketRequest is the JSON body for POST /tickets. Field rules live in
// the validation package, not in binding tags, so that all violations are
// collected and reported together.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // optional, defaults to "medium"
}

// UpdateTicketRequest is the JSON body for PUT /tickets/{id}. nil = leave the
// field unchanged.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

// TicketResponse is the JSON shape of a single ticket.
type TicketResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListTicketsResponse is returned by GET /tickets.
type ListTicketsResponse struct {
	Tickets    []TicketResponse `json:"tickets"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// DeleteTicketResponse is returned by DELETE /tickets/{id}.
type DeleteTicketResponse struct {
	Message string         `json:"message"`
	Ticket  TicketResponse `json:"ticket"`
}

// StatusCounts holds per-status ticket counts.
type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// PriorityCounts holds per-priority ticket counts.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Total    int            `json:"total"`
	Status   StatusCounts   `json:"status"`
	Priority PriorityCounts `json:"priority"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	UptimeSec float64   `json:"uptime,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ErrorResponse is the envelope for every error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// RateLimitResponse is returned when a client exceeds the request cap.
type RateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter string `json:"retryAfter"`
}
