package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all handlers behind the auth middleware.
func NewRouter(auth *AuthMiddleware, items *ItemHandler, reservations *ReservationHandler, returns *ReturnHandler, admin *AdminHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(auth.Handler)

	// Items
	r.HandleFunc("/items", items.Create).Methods(http.MethodPost)
	r.HandleFunc("/items", items.List).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", items.Get).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}/status", items.ChangeStatus).Methods(http.MethodPost)

	// Reservations
	r.HandleFunc("/reservations", reservations.Request).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}", reservations.Get).Methods(http.MethodGet)
	r.HandleFunc("/reservations/{id}/approve", reservations.Approve).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/reject", reservations.Reject).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/cancel", reservations.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/pickup", reservations.ConfirmPickup).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/dates", reservations.UpdateDates).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}/reservations", reservations.ListByUser).Methods(http.MethodGet)

	// Returns
	r.HandleFunc("/reservations/{id}/returns", returns.Initiate).Methods(http.MethodPost)
	r.HandleFunc("/returns/{id}/confirm", returns.Confirm).Methods(http.MethodPost)
	r.HandleFunc("/returns/{id}/metrics", returns.Metrics).Methods(http.MethodGet)

	// Staff operations
	r.HandleFunc("/admin/overdue-scan", admin.OverdueScan).Methods(http.MethodPost)
	r.HandleFunc("/admin/bulk/reservations", admin.BulkReservations).Methods(http.MethodPost)
	r.HandleFunc("/admin/bulk/returns", admin.BulkReturns).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/reputation", admin.ReputationSummary).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/reputation/history", admin.ReputationHistory).Methods(http.MethodGet)

	return r
}
