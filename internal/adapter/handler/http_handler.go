package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/inventory-api/internal/contract"
	"github.com/rl1809/inventory-api/internal/core/service"
)

type HTTPHandler struct {
	inventoryService *service.InventoryService
	maxBodyBytes     int64
	schema           contract.SchemaDocument
}

type HealthHTTPResponse struct {
	Status string `json:"status"`
}

func NewHTTPHandler(inventoryService *service.InventoryService, maxBodyBytes int64) *HTTPHandler {
	return &HTTPHandler{
		inventoryService: inventoryService,
		maxBodyBytes:     maxBodyBytes,
		schema:           contract.Schema(),
	}
}

// Routes builds the router. Trailing slashes are stripped, so /inventory/
// and /inventory reach the same handler.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(RequestID)
	r.Use(middleware.Logger)
	r.Use(Recoverer)
	r.Use(middleware.RequestSize(h.maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "resource not found", "NOT_FOUND", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
	})

	r.Get("/health", h.HealthCheck)

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Get("/schema", h.Schema)

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.DeleteItem)
		})
	})

	return r
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.NewItemListResponse(items))
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	input, err := contract.ParseCreate(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	item, err := h.inventoryService.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.NewItemResponse(item))
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.inventoryService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.NewItemResponse(item))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	patch, err := contract.ParseUpdate(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	item, err := h.inventoryService.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.NewItemResponse(item))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.MessageResponse{
		Message: fmt.Sprintf("Inventory item %d deleted successfully", id),
	})
}

func (h *HTTPHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.schema)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.inventoryService.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthHTTPResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthHTTPResponse{Status: "ok"})
}

// itemID parses the {id} segment. The route pattern only admits digits, so
// a parse failure means the value overflows int64 and cannot exist.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, fmt.Sprintf("Inventory item %s not found", raw), "NOT_FOUND", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		writeError(w, r, "unable to read request body", "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write json response: %v", err)
	}
}
