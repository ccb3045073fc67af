package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	log            logrus.FieldLogger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, log logrus.FieldLogger) *Handler {
	return &Handler{
		bookingService: bookingService,
		log:            log,
	}
}

// Response is the envelope of every API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Message: message})
}

func respondValidation(w http.ResponseWriter, errs []FieldError) {
	respondJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Validation failed", Errors: errs})
}

// capacityDetails is attached to 409 responses for a full slot
type capacityDetails struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
	Shortfall int `json:"shortfall"`
}

// respondServiceError maps a domain error to its HTTP status
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound domain.NotFoundError
		capacity domain.CapacityExceededError
		badPromo domain.InvalidPromoError
		badState domain.InvalidStateError
		badInput domain.ValidationError
		internal domain.InternalError
	)
	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, capitalize(notFound.Error()))
	case errors.As(err, &capacity):
		available := capacity.Available
		if available < 0 {
			available = 0
		}
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Message: capitalize(capacity.Error()),
			Data:    capacityDetails{Requested: capacity.Requested, Available: available, Shortfall: capacity.Shortfall()},
		})
	case errors.As(err, &badPromo):
		respondError(w, http.StatusBadRequest, capitalize(badPromo.Error()))
	case errors.As(err, &badState):
		respondError(w, http.StatusConflict, capitalize(badState.Error()))
	case errors.As(err, &badInput):
		respondValidation(w, []FieldError{{Field: badInput.Field, Message: badInput.Msg}})
	default:
		entry := h.log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
		if errors.As(err, &internal) && internal.Err != nil {
			entry = entry.WithField("cause", internal.Err.Error())
		}
		entry.Error("request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// ListExperiences handles GET /api/experiences
func (h *Handler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	experiences, err := h.bookingService.ListExperiences(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", experiences)
}

// GetExperience handles GET /api/experiences/{id}
func (h *Handler) GetExperience(w http.ResponseWriter, r *http.Request) {
	experienceID := mux.Vars(r)["id"]
	details, err := h.bookingService.GetExperience(r.Context(), experienceID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", details)
}

// GetExperienceSlots handles GET /api/experiences/{id}/slots?date=
func (h *Handler) GetExperienceSlots(w http.ResponseWriter, r *http.Request) {
	experienceID := mux.Vars(r)["id"]
	slots, err := h.bookingService.GetExperienceSlots(r.Context(), experienceID, r.URL.Query().Get("date"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", slots)
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validateStruct(&req); errs != nil {
		respondValidation(w, errs)
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "Booking created successfully", booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]
	booking, err := h.bookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", booking)
}

// GetBookingsByEmail handles GET /api/bookings/user/{email}
func (h *Handler) GetBookingsByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	bookings, err := h.bookingService.GetBookingsByEmail(r.Context(), email)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", bookings)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]
	booking, err := h.bookingService.CancelBooking(r.Context(), bookingID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Booking cancelled successfully", booking)
}

// ValidatePromo handles POST /api/promo/validate
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req models.PromoPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validateStruct(&req); errs != nil {
		respondValidation(w, errs)
		return
	}
	if req.Amount.IsNegative() {
		respondValidation(w, []FieldError{{Field: "amount", Message: "Amount must be positive"}})
		return
	}

	preview, err := h.bookingService.PreviewPromo(r.Context(), req.Code, req.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, preview.Message, preview)
}

// ListPromoCodes handles GET /api/promo/codes
func (h *Handler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.bookingService.ListPromoCodes(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", codes)
}

// HealthCheck handles GET /api/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "BookIt API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Welcome to BookIt API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "/api/health",
			"experiences": "/api/experiences",
			"bookings":    "/api/bookings",
			"promo":       "/api/promo",
		},
	})
}
