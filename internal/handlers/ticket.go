package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	dom "Ticketing/internal/domain"
	"Ticketing/internal/dto"
	"Ticketing/internal/repo"
	"Ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 1000

// TicketHandler handles the ticket CRUD endpoints plus stats and health.
type TicketHandler struct {
	svc *service.TicketService
	log *slog.Logger
	dev bool // expose underlying failure messages in details
}

// NewTicketHandler returns a new TicketHandler. dev controls whether internal
// error details reach the client.
func NewTicketHandler(svc *service.TicketService, log *slog.Logger, dev bool) *TicketHandler {
	return &TicketHandler{svc: svc, log: log, dev: dev}
}

// Create godoc
// @Summary      Create a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTicketRequest  true  "Ticket body"
// @Success      201   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req dto.CreateTicketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), req.Title, req.Description, req.Priority)
	if err != nil {
		h.fail(c, err, "Failed to create ticket. Please try again later.")
		return
	}
	c.JSON(http.StatusCreated, ticketToResponse(t))
}

// List godoc
// @Summary      List tickets with optional filters and pagination
// @Tags         tickets
// @Produce      json
// @Param        search    query  string  false  "Substring match on title or description"
// @Param        status    query  string  false  "open | inprogress | closed | all"
// @Param        priority  query  string  false  "low | medium | high | all"
// @Param        limit     query  int     false  "Page size (default 1000)"
// @Param        offset    query  int     false  "Rows to skip (default 0)"
// @Success      200  {object}  dto.ListTicketsResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	f := repo.ListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Limit:    intQuery(c, "limit", defaultListLimit),
		Offset:   intQuery(c, "offset", 0),
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to fetch tickets. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, dto.ListTicketsResponse{
		Tickets:    ticketsToResponses(res.Tickets),
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
	})
}

// GetByID godoc
// @Summary      Get a ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        id   path      int  true  "Ticket ID"
// @Success      200  {object}  dto.TicketResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tickets/{id} [get]
func (h *TicketHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to fetch ticket. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, ticketToResponse(t))
}

// Update godoc
// @Summary      Update a ticket (partial)
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      int  true  "Ticket ID"
// @Param        body  body      dto.UpdateTicketRequest  true  "Any subset of mutable fields"
// @Success      200   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tickets/{id} [put]
func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateTicketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, req.Title, req.Description, req.Priority, req.Status)
	if err != nil {
		h.fail(c, err, "Failed to update ticket. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, ticketToResponse(t))
}

// Delete godoc
// @Summary      Delete a ticket
// @Tags         tickets
// @Produce      json
// @Param        id   path      int  true  "Ticket ID"
// @Success      200  {object}  dto.DeleteTicketResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to delete ticket. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, dto.DeleteTicketResponse{
		Message: "Ticket deleted successfully",
		Ticket:  ticketToResponse(t),
	})
}

// Stats godoc
// @Summary      Aggregate ticket counts by status and priority
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /stats [get]
func (h *TicketHandler) Stats(c *gin.Context) {
	s, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch statistics. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		Total: s.Total,
		Status: dto.StatusCounts{
			Open:       s.Open,
			InProgress: s.InProgress,
			Closed:     s.Closed,
		},
		Priority: dto.PriorityCounts{
			High:   s.High,
			Medium: s.Medium,
			Low:    s.Low,
		},
	})
}

var processStart = time.Now()

// Health godoc
// @Summary      Liveness plus store connectivity probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *TicketHandler) Health(c *gin.Context) {
	now := time.Now().UTC()
	if err := h.svc.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:    "ERROR",
			Timestamp: now,
			Database:  "Disconnected",
			Error:     "Database connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "OK",
		Timestamp: now,
		Database:  "Connected",
		UptimeSec: time.Since(processStart).Seconds(),
	})
}

// fail translates a service error into the response envelope and status code.
func (h *TicketHandler) fail(c *gin.Context, err error, internalMsg string) {
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: verr.Details()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Ticket not found"})
	case errors.Is(err, service.ErrNoFields):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "No valid fields to update"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Ticket with similar data already exists"})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Database connection failed",
			Details: []string{"Service temporarily unavailable"},
		})
	default:
		h.log.Error("ticket_request_failed",
			slog.String("path", c.FullPath()),
			slog.String("err", err.Error()),
		)
		resp := dto.ErrorResponse{Error: internalMsg}
		if h.dev {
			resp.Details = []string{err.Error()}
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}

// bindJSON decodes the request body, translating an oversized body to 413 and
// anything else unreadable to 400.
func (h *TicketHandler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error:   "Request too large",
				Details: []string{"Maximum request body size exceeded"},
			})
			return false
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid JSON format in request body",
			Details: []string{"Please check your request format"},
		})
		return false
	}
	return true
}

func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid ticket ID"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func ticketToResponse(t dom.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ticketsToResponses(list []dom.Ticket) []dto.TicketResponse {
	out := make([]dto.TicketResponse, len(list))
	for i := range list {
		out[i] = ticketToResponse(list[i])
	}
	return out
}
