package http

import (
	"net/http"
	"time"

	"lendtrack-backend/internal/service"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	reservations service.ReservationService
}

func NewReservationHandler(reservations service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type requestReservationBody struct {
	ItemID    int32  `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *ReservationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestReservationBody
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	rsv, err := h.reservations.Request(r.Context(), actorFrom(r), req.ItemID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rsv)
}

func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rsv, err := h.reservations.Approve(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsv)
}

type reasonBody struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reasonBody
	if !decodeBody(w, r, &req) {
		return
	}
	rsv, err := h.reservations.Reject(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsv)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reasonBody
	if !decodeBody(w, r, &req) {
		return
	}
	rsv, penalty, err := h.reservations.Cancel(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reservation": rsv, "penalty_applied": penalty})
}

func (h *ReservationHandler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rsv, err := h.reservations.ConfirmPickup(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsv)
}

type updateDatesBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *ReservationHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateDatesBody
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}
	rsv, err := h.reservations.UpdateDates(r.Context(), actorFrom(r), id, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsv)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rsv, err := h.reservations.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsv)
}

func (h *ReservationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	reservations, total, err := h.reservations.ListByUser(r.Context(), actorFrom(r), userID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reservations": reservations, "total": total})
}

func parseDateRange(w http.ResponseWriter, startStr, endStr string) (time.Time, time.Time, bool) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid start_date, expected yyyy-mm-dd", Kind: "validation"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid end_date, expected yyyy-mm-dd", Kind: "validation"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
