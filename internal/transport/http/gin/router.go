package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/payment"
	"github.com/kirinyoku/tix-checkout/internal/service/admin"
	"github.com/kirinyoku/tix-checkout/internal/service/bookings"
	"github.com/kirinyoku/tix-checkout/internal/service/catalog"
	checkoutsvc "github.com/kirinyoku/tix-checkout/internal/service/checkout"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type CatalogService interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error)
	ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error)
}

type CheckoutService interface {
	Start(ctx context.Context, p domain.Principal, eventID int64) (*checkout.Session, error)
	Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*checkout.Session, error)
	SelectTickets(ctx context.Context, p domain.Principal, id uuid.UUID, ticketTypeID string, qty int) (*checkout.Session, error)
	ApplyPromo(ctx context.Context, p domain.Principal, id uuid.UUID, code string) (*checkout.Session, bool, error)
	Continue(ctx context.Context, p domain.Principal, id uuid.UUID) (*checkout.Session, error)
	Back(ctx context.Context, p domain.Principal, id uuid.UUID) (*checkout.Session, error)
	Submit(ctx context.Context, p domain.Principal, id uuid.UUID, method domain.PaymentMethod, fields domain.PaymentFields) (*domain.BookingConfirmation, error)
}

type BookingService interface {
	GetBooking(ctx context.Context, p domain.Principal, reference string) (*domain.BookingConfirmation, error)
	ListBookings(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.BookingConfirmation, error)
}

type AdminService interface {
	CreateEvent(ctx context.Context, p domain.Principal, title, venue string, starts, ends time.Time) (int64, error)
	CreateTicketTypes(ctx context.Context, p domain.Principal, eventID int64, types []domain.TicketType) error
}

type Deps struct {
	Catalog     CatalogService
	Checkout    CheckoutService
	Bookings    BookingService
	Admin       AdminService
	Idempotency Idempotency
	JWTSecret   []byte
}

func NewRouter(deps Deps, logger *slog.Logger, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/events", handleListEvents(deps.Catalog))
	r.GET("/events/:id", handleGetEvent(deps.Catalog))
	r.GET("/events/:id/ticket-types", handleListTicketTypes(deps.Catalog))

	authed := r.Group("/", AuthMiddleware(deps.JWTSecret))

	sessions := authed.Group("/checkout/sessions")
	{
		sessions.POST("", handleStartCheckout(deps.Checkout))
		sessions.GET("/:id", handleGetSession(deps.Checkout))
		sessions.PUT("/:id/tickets", handleSelectTickets(deps.Checkout))
		sessions.POST("/:id/promo", handleApplyPromo(deps.Checkout))
		sessions.POST("/:id/continue", handleContinue(deps.Checkout))
		sessions.POST("/:id/back", handleBack(deps.Checkout))
		sessions.POST("/:id/payment", handleSubmitPayment(deps.Checkout, deps.Idempotency))
	}

	authed.GET("/bookings", handleListBookings(deps.Bookings))
	authed.GET("/bookings/:reference", handleGetBooking(deps.Bookings))

	adm := authed.Group("/admin", RequireListingManager())
	{
		adm.POST("/events", handleCreateEvent(deps.Admin))
		adm.POST("/events/:id/ticket-types", handleCreateTicketTypes(deps.Admin))
	}

	return r
}

// @Summary  List events
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200  {array}  domain.Event
// @Router   /events [get]
func handleListEvents(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svc.ListEvents(
			c.Request.Context(),
			parseIntDefault(c.Query("limit"), 20),
			parseIntDefault(c.Query("offset"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, events, "public, max-age=30", true)
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svc.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  List ticket types with availability
// @Param    id  path  int  true  "Event ID"
// @Success  200  {array}   domain.TicketType
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id}/ticket-types [get]
func handleListTicketTypes(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		types, err := svc.ListTicketTypes(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, types, "public, max-age=15", true)
	}
}

// @Summary  Start checkout
// @Security BearerAuth
// @Param    req body  StartCheckoutRequest true "payload"
// @Success  201 {object} SessionResponse
// @Failure  404 {object} ErrorResponse
// @Router   /checkout/sessions [post]
func handleStartCheckout(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svc.Start(c.Request.Context(), principalFrom(c), req.EventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, newSessionResponse(sess))
	}
}

// @Summary  Get checkout session
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  404 {object} ErrorResponse
// @Router   /checkout/sessions/{id} [get]
func handleGetSession(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		sess, err := svc.Get(c.Request.Context(), principalFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, newSessionResponse(sess))
	}
}

// @Summary  Set quantity for a ticket type
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  SelectTicketsRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /checkout/sessions/{id}/tickets [put]
func handleSelectTickets(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req SelectTicketsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svc.SelectTickets(c.Request.Context(), principalFrom(c), id, req.TicketTypeID, *req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, newSessionResponse(sess))
	}
}

// @Summary  Apply promo code
// @Description An unknown code is not an error; applied is false and the previous promo stays.
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  ApplyPromoRequest true "payload"
// @Success  200 {object} ApplyPromoResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /checkout/sessions/{id}/promo [post]
func handleApplyPromo(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ApplyPromoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, applied, err := svc.ApplyPromo(c.Request.Context(), principalFrom(c), id, req.Code)
		if err != nil {
			respondErr(c, err)
			return
		}

		msg := "promo code applied"
		if !applied {
			msg = "promo code not recognised"
		}

		c.JSON(http.StatusOK, ApplyPromoResponse{
			Applied: applied,
			Message: msg,
			Session: newSessionResponse(sess),
		})
	}
}

// @Summary  Continue to payment
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  409 {object} ErrorResponse "no tickets selected"
// @Router   /checkout/sessions/{id}/continue [post]
func handleContinue(svc CheckoutService) gin.HandlerFunc {
	return handleTransition(svc.Continue)
}

// @Summary  Back to ticket selection
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Router   /checkout/sessions/{id}/back [post]
func handleBack(svc CheckoutService) gin.HandlerFunc {
	return handleTransition(svc.Back)
}

func handleTransition(
	fn func(ctx context.Context, p domain.Principal, id uuid.UUID) (*checkout.Session, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		sess, err := fn(c.Request.Context(), principalFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, newSessionResponse(sess))
	}
}

// @Summary  Submit payment (idempotent)
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    Idempotency-Key header string false "replays return the stored confirmation"
// @Param    req body  PaymentRequest true "payload"
// @Success  201 {object} domain.BookingConfirmation
// @Failure  402 {object} ErrorResponse "declined"
// @Failure  409 {object} ErrorResponse "sold out / in progress"
// @Failure  422 {object} ErrorResponse "invalid payment input"
// @Failure  504 {object} ErrorResponse "gateway timeout"
// @Router   /checkout/sessions/{id}/payment [post]
func handleSubmitPayment(svc CheckoutService, idem Idempotency) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		withIdempotency(c, idem, id, func() (int, any, error) {
			conf, err := svc.Submit(
				c.Request.Context(),
				principalFrom(c),
				id,
				domain.PaymentMethod(req.Method),
				req.fields(),
			)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, conf, nil
		})
	}
}

// @Summary  List my bookings
// @Security BearerAuth
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200 {array} domain.BookingConfirmation
// @Router   /bookings [get]
func handleListBookings(svc BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListBookings(
			c.Request.Context(),
			principalFrom(c),
			parseIntDefault(c.Query("limit"), 20),
			parseIntDefault(c.Query("offset"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Get booking by reference
// @Security BearerAuth
// @Param    reference  path  string  true  "Booking reference"
// @Success  200 {object} domain.BookingConfirmation
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{reference} [get]
func handleGetBooking(svc BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.GetBooking(c.Request.Context(), principalFrom(c), c.Param("reference"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Create event
// @Security BearerAuth
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/events [post]
func handleCreateEvent(svc AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid starts_at (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid ends_at (RFC3339)")
			return
		}
		id, err := svc.CreateEvent(c.Request.Context(), principalFrom(c), req.Title, req.Venue, starts, ends)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Add ticket types to an event
// @Security BearerAuth
// @Param    id  path  int  true  "Event ID"
// @Param    req body  CreateTicketTypesRequest true "payload"
// @Success  201 {object} map[string]int
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/events/{id}/ticket-types [post]
func handleCreateTicketTypes(svc AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateTicketTypesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		types := make([]domain.TicketType, 0, len(req.TicketTypes))
		for _, in := range req.TicketTypes {
			types = append(types, domain.TicketType{
				ID:                in.ID,
				EventID:           eventID,
				Name:              in.Name,
				Description:       in.Description,
				UnitPrice:         in.UnitPrice,
				AvailableQuantity: in.AvailableQuantity,
				Perks:             in.Perks,
			})
		}
		if err := svc.CreateTicketTypes(c.Request.Context(), principalFrom(c), eventID, types); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"created": len(types)})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var ve *checkout.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Reason, Field: ve.Field})
		return
	}

	var rl *checkoutsvc.RateLimitedError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rl.RetryAfter)))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many promo code attempts"})
		return
	}

	switch {
	// checkout engine
	case errors.Is(err, checkout.ErrUnknownTicketType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown ticket type", Field: "ticket_type_id"})
	case errors.Is(err, checkout.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity out of range", Field: "quantity"})
	case errors.Is(err, checkout.ErrNoTicketsSelected):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "select at least one ticket"})
	case errors.Is(err, checkout.ErrInvalidStep):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "action not allowed at this step"})
	// payment
	case errors.Is(err, payment.ErrDeclined):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "payment declined"})
	case errors.Is(err, payment.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "payment timed out, please retry"})
	case errors.Is(err, payment.ErrInvalid):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "payment rejected as invalid"})
	// checkout service
	case errors.Is(err, checkoutsvc.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "checkout session not found"})
	case errors.Is(err, checkoutsvc.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "checkout session belongs to another user"})
	case errors.Is(err, checkoutsvc.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, checkoutsvc.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not enough tickets left, your payment was refunded"})
	case errors.Is(err, checkoutsvc.ErrAlreadyBooked):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "this checkout session was already booked, your payment was refunded"})
	case errors.Is(err, checkoutsvc.ErrSessionBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "checkout session is busy, retry shortly"})
	// catalog service
	case errors.Is(err, catalog.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	// bookings service
	case errors.Is(err, bookings.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	// admin service
	case errors.Is(err, admin.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
	case errors.Is(err, admin.ErrInvalidListing):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
	case errors.Is(err, admin.ErrTicketTypeConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "ticket type conflict"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
