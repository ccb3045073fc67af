package router

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bookit/experience-booking/internal/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SetupRouter creates and configures the HTTP router. ws may be nil when
// live availability is disabled.
func SetupRouter(h *handlers.Handler, ws http.HandlerFunc, log logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodOptions)

	// Experiences
	api.HandleFunc("/experiences", h.ListExperiences).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/experiences/{id}", h.GetExperience).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/experiences/{id}/slots", h.GetExperienceSlots).Methods(http.MethodGet, http.MethodOptions)

	// Bookings
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bookings/user/{email}", h.GetBookingsByEmail).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPut, http.MethodOptions)

	// Promo codes
	api.HandleFunc("/promo/validate", h.ValidatePromo).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/promo/codes", h.ListPromoCodes).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for live availability
	if ws != nil {
		api.HandleFunc("/experiences/{id}/ws", ws)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Route not found"}`))
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack passes websocket upgrades through to the underlying connection
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func loggingMiddleware(log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}
