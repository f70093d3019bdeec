package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakewriter/internal/domain"
)

// TableTypesResponse is the body of GET /v1/catalog/{database}/{table}/types.
type TableTypesResponse struct {
	Database string            `json:"database"`
	Table    string            `json:"table"`
	Types    map[string]string `json:"types"`
}

// GetTableTypes returns the catalog column types of a table.
func (h *APIHandler) GetTableTypes(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	table := chi.URLParam(r, "table")

	types, err := h.types.GetTableTypes(r.Context(), database, table)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if types == nil {
		h.writeError(w, r, domain.ErrNotFound("table %s.%s not found", database, table))
		return
	}
	writeJSON(w, http.StatusOK, TableTypesResponse{Database: database, Table: table, Types: types})
}
