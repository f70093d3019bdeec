package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"lakewriter/internal/datatypes"
	"lakewriter/internal/domain"
	"lakewriter/internal/service/writer"
)

// PreflightColumn declares one input column.
type PreflightColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PreflightRequest is the body of POST /v1/preflight. Rows is a JSON array of
// objects keyed by column name.
type PreflightRequest struct {
	Path            string            `json:"path"`
	Dataset         bool              `json:"dataset"`
	PartitionCols   []string          `json:"partition_cols,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	Database        string            `json:"database,omitempty"`
	Table           string            `json:"table,omitempty"`
	Description     *string           `json:"description,omitempty"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	ColumnsComments map[string]string `json:"columns_comments,omitempty"`
	Compression     string            `json:"compression,omitempty"`
	Format          string            `json:"format,omitempty"`
	DType           map[string]string `json:"dtype,omitempty"`
	Presign         bool              `json:"presign,omitempty"`
	Columns         []PreflightColumn `json:"columns"`
	Rows            json.RawMessage   `json:"rows"`
}

func (req *PreflightRequest) writeArgs() domain.WriteArgs {
	return domain.WriteArgs{
		Path:            req.Path,
		Dataset:         req.Dataset,
		PartitionCols:   req.PartitionCols,
		Mode:            domain.WriteMode(req.Mode),
		Database:        req.Database,
		Table:           req.Table,
		Description:     req.Description,
		Parameters:      req.Parameters,
		ColumnsComments: req.ColumnsComments,
		Compression:     domain.Compression(req.Compression),
		Format:          domain.FileFormat(req.Format),
	}
}

// Preflight runs the write pre-flight for an inline dataset and returns the
// prepared schema and the planned objects.
func (h *APIHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	var req PreflightRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Error{Code: http.StatusRequestEntityTooLarge, Message: "request body too large"})
			return
		}
		h.writeError(w, r, domain.ErrValidation("decode request: %v", err))
		return
	}
	if len(req.Columns) == 0 {
		h.writeError(w, r, domain.ErrEmptyInput())
		return
	}

	cols := make([]domain.ColumnDef, len(req.Columns))
	for i, c := range req.Columns {
		cols[i] = domain.ColumnDef{Name: c.Name, Type: c.Type}
	}
	rows := []byte(req.Rows)
	if len(bytes.TrimSpace(rows)) == 0 || bytes.Equal(bytes.TrimSpace(rows), []byte("null")) {
		rows = []byte("[]")
	}
	rec, err := datatypes.RecordFromJSON(memory.DefaultAllocator, cols, bytes.NewReader(rows))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rec.Release()

	prepared, err := h.writers.Writer(req.Presign).Prepare(r.Context(), rec, req.writeArgs(), req.DType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer prepared.Release()

	summary, err := writer.Summarize(prepared)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
