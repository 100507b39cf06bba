package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dom "Ticketing/internal/domain"
	"Ticketing/internal/dto"
	"Ticketing/internal/handlers"
	"Ticketing/internal/middleware"
	"Ticketing/internal/repo"
	"Ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWith(t, repo.NewMemoryTicketRepo())
}

func newTestServerWith(t *testing.T, store repo.TicketRepo) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.BodyLimit(1 << 20))

	svc := service.NewTicketService(store, nil)
	h := handlers.NewTicketHandler(svc, testLogger(), true)

	api := r.Group("/api/v1")
	api.POST("/tickets", h.Create)
	api.GET("/tickets", h.List)
	api.GET("/tickets/:id", h.GetByID)
	api.PUT("/tickets/:id", h.Update)
	api.DELETE("/tickets/:id", h.Delete)
	api.GET("/stats", h.Stats)
	api.GET("/health", h.Health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Route not found",
			Details: []string{fmt.Sprintf("The requested endpoint %s %s does not exist",
				c.Request.Method, c.Request.URL.Path)},
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, b
}

func createTicket(t *testing.T, srv *httptest.Server, body string) dto.TicketResponse {
	t.Helper()
	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(b))
	var created dto.TicketResponse
	require.NoError(t, json.Unmarshal(b, &created))
	return created
}

// failingRepo wraps a working repo and injects store errors per operation.
type failingRepo struct {
	repo.TicketRepo
	createErr error
	listErr   error
	pingErr   error
}

func (f *failingRepo) Create(ctx context.Context, t dom.Ticket) (dom.Ticket, error) {
	if f.createErr != nil {
		return dom.Ticket{}, f.createErr
	}
	return f.TicketRepo.Create(ctx, t)
}

func (f *failingRepo) List(ctx context.Context, fl repo.ListFilter) ([]dom.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.TicketRepo.List(ctx, fl)
}

func (f *failingRepo) Ping(ctx context.Context) error {
	if f.pingErr != nil {
		return f.pingErr
	}
	return f.TicketRepo.Ping(ctx)
}

func TestCreateTicket201(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets",
		`{"title":"Printer jam","description":"The printer on 3rd floor is jammed and won't clear","priority":"high"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(b))

	var got dto.TicketResponse
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotZero(t, got.ID)
	assert.Equal(t, "open", got.Status)
	assert.Equal(t, "high", got.Priority)
	assert.False(t, got.CreatedAt.IsZero())

	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestCreateTicketIgnoresCallerStatus(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Printer jam","description":"The printer on 3rd floor is jammed","status":"closed"}`)
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "medium", created.Priority)
}

func TestCreateTicketValidation400(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets",
		`{"title":"ab","description":"short","priority":"urgent"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Validation failed", er.Error)
	assert.Equal(t, []string{
		"Title must be at least 3 characters long",
		"Description must be at least 10 characters long",
		"Priority must be low, medium, or high",
	}, er.Details)
}

func TestCreateTicketMalformedJSON400(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets", `{"title": "oops`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Invalid JSON format in request body", er.Error)
}

func TestCreateTicketOversizedBody413(t *testing.T) {
	srv := newTestServer(t)

	huge := strings.Repeat("x", 2<<20)
	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets",
		`{"title":"Big one","description":"`+huge+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Request too large", er.Error)
}

func TestGetTicketRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Network down","description":"No internet anywhere in the office"}`)

	resp, b := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got dto.TicketResponse
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, created, got)
}

func TestGetTicketNotFound404(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets/999999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Ticket not found", er.Error)
}

func TestGetTicketBadID400(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Invalid ticket ID", er.Error)
}

func TestUpdateTicketPartial200(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Network down","description":"No internet anywhere in the office","priority":"high"}`)

	resp, b := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID),
		`{"status":"inprogress"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))

	var got dto.TicketResponse
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "inprogress", got.Status)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Priority, got.Priority)
}

func TestUpdateTicketBadStatus400(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Network down","description":"No internet anywhere in the office"}`)

	resp, b := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID),
		`{"status":"bogus"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Validation failed", er.Error)
	assert.Contains(t, er.Details, "Status must be open, inprogress, or closed")

	// Stored row unchanged.
	resp, b = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.TicketResponse
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "open", got.Status)
}

func TestUpdateTicketNoFields400(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Network down","description":"No internet anywhere in the office"}`)

	resp, b := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID), `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "No valid fields to update", er.Error)
}

func TestDeleteTicketTwice(t *testing.T) {
	srv := newTestServer(t)

	created := createTicket(t, srv,
		`{"title":"Network down","description":"No internet anywhere in the office"}`)

	url := fmt.Sprintf("%s/api/v1/tickets/%d", srv.URL, created.ID)

	resp, b := doJSON(t, http.MethodDelete, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var del dto.DeleteTicketResponse
	require.NoError(t, json.Unmarshal(b, &del))
	assert.Equal(t, "Ticket deleted successfully", del.Message)
	assert.Equal(t, created.ID, del.Ticket.ID)

	resp, b = doJSON(t, http.MethodDelete, url, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Ticket not found", er.Error)
}

func TestListTicketsFiltersAndPagination(t *testing.T) {
	srv := newTestServer(t)

	createTicket(t, srv, `{"title":"Printer jam","description":"The printer on 3rd floor is jammed","priority":"high"}`)
	createTicket(t, srv, `{"title":"VPN flaky","description":"Connection drops every ten minutes","priority":"medium"}`)
	createTicket(t, srv, `{"title":"Printer toner low","description":"Replacement toner needed for the printer","priority":"low"}`)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets?search=printer&limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.ListTicketsResponse
	require.NoError(t, json.Unmarshal(b, &list))
	require.Len(t, list.Tickets, 2)
	for _, tk := range list.Tickets {
		matched := strings.Contains(strings.ToLower(tk.Title), "printer") ||
			strings.Contains(strings.ToLower(tk.Description), "printer")
		assert.True(t, matched)
	}
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.TotalPages)

	resp, b = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets?limit=2&offset=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(b, &list))
	assert.LessOrEqual(t, len(list.Tickets), 2)
	assert.Equal(t, 2, list.Page)

	resp, b = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets?status=all&priority=high", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(b, &list))
	require.Len(t, list.Tickets, 1)
	assert.Equal(t, "high", list.Tickets[0].Priority)
}

func TestListTicketsOrderedNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	first := createTicket(t, srv, `{"title":"First ticket","description":"Created before the second one"}`)
	second := createTicket(t, srv, `{"title":"Second ticket","description":"Created after the first one"}`)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.ListTicketsResponse
	require.NoError(t, json.Unmarshal(b, &list))
	require.Len(t, list.Tickets, 2)
	assert.Equal(t, second.ID, list.Tickets[0].ID)
	assert.Equal(t, first.ID, list.Tickets[1].ID)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	createTicket(t, srv, `{"title":"Printer jam","description":"The printer on 3rd floor is jammed","priority":"high"}`)
	createTicket(t, srv, `{"title":"VPN flaky","description":"Connection drops every ten minutes"}`)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(b, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Status.Open)
	assert.Equal(t, 1, stats.Priority.High)
	assert.Equal(t, 1, stats.Priority.Medium)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(b, &health))
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "Connected", health.Database)
	assert.False(t, health.Timestamp.IsZero())
}

func TestCreateTicketConflict409(t *testing.T) {
	srv := newTestServerWith(t, &failingRepo{
		TicketRepo: repo.NewMemoryTicketRepo(),
		createErr:  &pgconn.PgError{Code: "23505"},
	})

	resp, b := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tickets",
		`{"title":"Printer jam","description":"The printer on 3rd floor is jammed"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Ticket with similar data already exists", er.Error)
}

func TestListTicketsStoreUnreachable503(t *testing.T) {
	srv := newTestServerWith(t, &failingRepo{
		TicketRepo: repo.NewMemoryTicketRepo(),
		listErr:    &pgconn.PgError{Code: "08006"},
	})

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tickets", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Database connection failed", er.Error)
	assert.Equal(t, []string{"Service temporarily unavailable"}, er.Details)
}

func TestHealthEndpointStoreDown503(t *testing.T) {
	srv := newTestServerWith(t, &failingRepo{
		TicketRepo: repo.NewMemoryTicketRepo(),
		pingErr:    &pgconn.PgError{Code: "08006"},
	})

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(b, &health))
	assert.Equal(t, "ERROR", health.Status)
	assert.Equal(t, "Disconnected", health.Database)
	assert.Equal(t, "Database connection failed", health.Error)
}

func TestUnmatchedRoute404(t *testing.T) {
	srv := newTestServer(t)

	resp, b := doJSON(t, http.MethodGet, srv.URL+"/api/v1/nope", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(b, &er))
	assert.Equal(t, "Route not found", er.Error)
	require.Len(t, er.Details, 1)
	assert.Contains(t, er.Details[0], "GET /api/v1/nope")
}
