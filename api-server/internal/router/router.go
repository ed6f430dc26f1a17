package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/marcos020499/booker/api-server/internal/handlers"
	"github.com/rs/cors"
)

// WebSocketHandler serves the live session feed
type WebSocketHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// NewRouter creates and configures the HTTP router
func NewRouter(h *handlers.Handler, ws WebSocketHandler) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Reference data
	api.HandleFunc("/airports", h.ListAirports).Methods(http.MethodGet)
	api.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/seatmap", h.GetSeatMap).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.CancelSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/criteria", h.UpdateCriteria).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/swap", h.SwapAirports).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/passengers", h.AdjustPassengers).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/filters", h.UpdateFilters).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/flight", h.SelectFlight).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/seatmap", h.OpenSeatMap).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/seat", h.SelectSeat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/checkout", h.ContinueToPayment).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/pay", h.SubmitPayment).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/back", h.Back).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/restart", h.Restart).Methods(http.MethodPost)

	// WebSocket for real-time updates
	api.HandleFunc("/sessions/{id}/ws", ws.HandleWebSocket).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return corsHandler.Handler(r)
}
