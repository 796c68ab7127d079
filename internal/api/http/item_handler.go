package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/service"
)

type ItemHandler struct {
	items service.ItemService
}

func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

type createItemRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Condition   domain.ItemCondition `json:"condition"`
	ValueCents  int32                `json:"value_cents"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item := &domain.Item{
		Name:        req.Name,
		Description: req.Description,
		Condition:   req.Condition,
		ValueCents:  req.ValueCents,
	}
	if err := h.items.CreateItem(r.Context(), actorFrom(r), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	items, total, err := h.items.ListItems(r.Context(), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

type itemStatusRequest struct {
	Status domain.ItemStatus `json:"status"`
	Reason string            `json:"reason"`
	Force  bool              `json:"force"`
}

func (h *ItemHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req itemStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.items.ApplyTransition(r.Context(), id, req.Status, actorFrom(r), req.Reason, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name, Kind: "validation"})
		return 0, false
	}
	return int32(id), true
}

func pagination(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
