package writer

import (
	"time"

	"lakewriter/internal/datatypes"
)

// Summary is the serializable outcome of a pre-flight, shared by the CLI
// and the HTTP API.
type Summary struct {
	Path          string            `json:"path" yaml:"path"`
	Dataset       bool              `json:"dataset" yaml:"dataset"`
	Mode          string            `json:"mode,omitempty" yaml:"mode,omitempty"`
	Database      string            `json:"database,omitempty" yaml:"database,omitempty"`
	Table         string            `json:"table,omitempty" yaml:"table,omitempty"`
	Rows          int64             `json:"rows" yaml:"rows"`
	Columns       []SummaryColumn   `json:"columns" yaml:"columns"`
	PartitionCols []string          `json:"partition_cols,omitempty" yaml:"partition_cols,omitempty"`
	DType         map[string]string `json:"dtype" yaml:"dtype"`
	Objects       []SummaryObject   `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// SummaryColumn is one output column and its catalog type.
type SummaryColumn struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// SummaryObject is one planned output object.
type SummaryObject struct {
	URI             string     `json:"uri" yaml:"uri"`
	PartitionValues []string   `json:"partition_values,omitempty" yaml:"partition_values,omitempty"`
	Rows            int64      `json:"rows" yaml:"rows"`
	UploadURL       string     `json:"upload_url,omitempty" yaml:"upload_url,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Summarize renders a prepared write.
func Summarize(p *Prepared) (*Summary, error) {
	cols, err := datatypes.SchemaTypes(p.Record.Schema())
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Path:          p.Args.Path,
		Dataset:       p.Args.Dataset,
		Mode:          string(p.Args.Mode),
		Database:      p.Args.Database,
		Table:         p.Args.Table,
		Rows:          p.Record.NumRows(),
		Columns:       make([]SummaryColumn, len(cols)),
		PartitionCols: p.PartitionCols,
		DType:         p.DType.Clone(),
	}
	for i, c := range cols {
		s.Columns[i] = SummaryColumn{Name: c.Name, Type: c.Type}
	}
	if p.Plan != nil {
		for _, o := range p.Plan.Objects {
			obj := SummaryObject{
				URI:             o.URI,
				PartitionValues: o.PartitionValues,
				Rows:            o.Rows,
				UploadURL:       o.UploadURL,
			}
			if !o.ExpiresAt.IsZero() {
				exp := o.ExpiresAt
				obj.ExpiresAt = &exp
			}
			s.Objects = append(s.Objects, obj)
		}
	}
	return s, nil
}
