package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/procyon/internal/apperr"
	"github.com/starford/procyon/internal/catalogservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalogservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalogservice.Service) *Handler {
	return &Handler{svc: svc}
}

// itemID extracts the {id} route parameter as a positive integer.
func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrIO):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetCatalog handles GET /catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Info(r.Context()))
}

// OpenCatalog handles POST /catalog/open.
func (h *Handler) OpenCatalog(w http.ResponseWriter, r *http.Request) {
	var req OpenCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	warnings, err := h.svc.OpenCatalog(r.Context(), req.Path)
	if err != nil {
		h.writeErr(w, "open catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"catalog":  h.svc.Info(r.Context()),
		"warnings": warnings,
	})
}

// NewCatalog handles POST /catalog.
func (h *Handler) NewCatalog(w http.ResponseWriter, r *http.Request) {
	var req OpenCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if _, err := h.svc.NewCatalog(r.Context(), req.Path); err != nil {
		h.writeErr(w, "create catalog", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Info(r.Context()))
}

// CloseCatalog handles DELETE /catalog.
func (h *Handler) CloseCatalog(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.CloseCatalog(); err != nil {
		h.writeErr(w, "close catalog", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems handles GET /items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Tree(r.Context())
	if err != nil {
		h.writeErr(w, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": tree})
}

// GetMemo handles GET /memos/{id}.
func (h *Handler) GetMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	memo, err := h.svc.GetMemo(r.Context(), id)
	if err != nil {
		h.writeErr(w, "get memo", err)
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

// CreateMemo handles POST /memos.
func (h *Handler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	id, err := h.svc.CreateMemo(r.Context(), req.ParentID, req.Title, req.Type, req.Text)
	if err != nil {
		h.writeErr(w, "create memo", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// UpdateMemo handles PUT /memos/{id}.
func (h *Handler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req UpdateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if err := h.svc.UpdateMemo(r.Context(), id, req.Title, req.Text); err != nil {
		h.writeErr(w, "update memo", err)
		return
	}
	memo, err := h.svc.GetMemo(r.Context(), id)
	if err != nil {
		h.writeErr(w, "update memo", err)
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

// DeleteMemo handles DELETE /memos/{id}.
func (h *Handler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.svc.DeleteMemo(r.Context(), id); err != nil {
		h.writeErr(w, "delete memo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFolder handles GET /folders/{id}.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	folder, err := h.svc.GetFolder(r.Context(), id)
	if err != nil {
		h.writeErr(w, "get folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// CreateFolder handles POST /folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	id, err := h.svc.CreateFolder(r.Context(), req.ParentID, req.Title)
	if err != nil {
		h.writeErr(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// RenameFolder handles PUT /folders/{id}.
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if err := h.svc.RenameFolder(r.Context(), id, req.Title); err != nil {
		h.writeErr(w, "rename folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFolder handles DELETE /folders/{id}.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	memoIDs, err := h.svc.DeleteFolder(r.Context(), id)
	if err != nil {
		h.writeErr(w, "delete folder", err)
		return
	}
	if memoIDs == nil {
		memoIDs = []int64{}
	}
	writeJSON(w, http.StatusOK, DeleteFolderResponse{RemovedMemoIDs: memoIDs})
}

// RecentFiles handles GET /recent.
func (h *Handler) RecentFiles(w http.ResponseWriter, r *http.Request) {
	files := h.svc.RecentFiles(r.Context())
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recent": files})
}
