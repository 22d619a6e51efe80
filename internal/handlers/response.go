package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
	"github.com/go-chi/chi/v5"
)

// writeJSON is a helper function to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess wraps data in a SUCCESS envelope.
func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, models.Response[any]{
		Code:    models.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// writeFailure answers with the envelope code and status of a service error.
func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, services.Status(err), models.Response[any]{
		Code:    services.Code(err),
		Message: err.Error(),
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, models.Response[any]{
		Code:    services.CodeInvalidRequest,
		Message: message,
	})
}

// idParam reads a positive int64 URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// pageParams reads page and size, defaulting to the first page of ten.
func pageParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 10
	}
	return page, size
}
