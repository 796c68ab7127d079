package http

import (
	"net/http"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/service"
)

type ReturnHandler struct {
	returns service.ReturnService
}

func NewReturnHandler(returns service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

type initiateReturnBody struct {
	Condition    domain.ItemCondition `json:"condition_on_return"`
	DamageReport string               `json:"damage_report"`
}

func (h *ReturnHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req initiateReturnBody
	if !decodeBody(w, r, &req) {
		return
	}

	ret, err := h.returns.InitiateReturn(r.Context(), actorFrom(r), reservationID, req.Condition, req.DamageReport)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ret)
}

type confirmReturnBody struct {
	Approved        bool                    `json:"approved"`
	StaffAssessment *domain.StaffAssessment `json:"staff_assessment,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
}

func (h *ReturnHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	returnID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req confirmReturnBody
	if !decodeBody(w, r, &req) {
		return
	}

	conf, err := h.returns.ConfirmReturn(r.Context(), actorFrom(r), returnID, req.Approved, req.StaffAssessment, req.RejectionReason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

func (h *ReturnHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	returnID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	metrics, err := h.returns.Metrics(r.Context(), returnID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
