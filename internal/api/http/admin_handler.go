package http

import (
	"net/http"

	"lendtrack-backend/internal/service"
)

type AdminHandler struct {
	overdue    service.OverdueService
	bulk       service.BulkService
	reputation service.ReputationService
}

func NewAdminHandler(overdue service.OverdueService, bulk service.BulkService, reputation service.ReputationService) *AdminHandler {
	return &AdminHandler{overdue: overdue, bulk: bulk, reputation: reputation}
}

func (h *AdminHandler) OverdueScan(w http.ResponseWriter, r *http.Request) {
	var params service.OverdueScanParams
	if !decodeBody(w, r, &params) {
		return
	}

	result, err := h.overdue.Scan(r.Context(), actorFrom(r), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type bulkReservationBody struct {
	Action         service.BulkReservationAction `json:"action"`
	ReservationIDs []int32                       `json:"reservation_ids"`
	Reason         string                        `json:"reason,omitempty"`
}

func (h *AdminHandler) BulkReservations(w http.ResponseWriter, r *http.Request) {
	var req bulkReservationBody
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.bulk.ApplyToReservations(r.Context(), actorFrom(r), req.Action, req.ReservationIDs, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	// Partial failure is a result, not an error: callers act on successes.
	writeJSON(w, http.StatusOK, result)
}

type bulkReturnBody struct {
	Action          service.BulkReturnAction `json:"action"`
	ReturnIDs       []int32                  `json:"return_ids"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
}

func (h *AdminHandler) BulkReturns(w http.ResponseWriter, r *http.Request) {
	var req bulkReturnBody
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.bulk.ApplyToReturns(r.Context(), actorFrom(r), req.Action, req.ReturnIDs, req.RejectionReason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) ReputationHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	entries, total, err := h.reputation.History(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "total": total})
}

func (h *AdminHandler) ReputationSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.reputation.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
