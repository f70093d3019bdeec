package domain

import "time"

// WriteMode controls how a dataset write treats data already at the destination.
// The empty value means no mode was supplied.
type WriteMode string

// Supported write modes. They apply only to dataset writes.
const (
	WriteModeAppend              WriteMode = "append"
	WriteModeOverwrite           WriteMode = "overwrite"
	WriteModeOverwritePartitions WriteMode = "overwrite_partitions"
)

// Valid reports whether m is one of the supported write modes.
func (m WriteMode) Valid() bool {
	switch m {
	case WriteModeAppend, WriteModeOverwrite, WriteModeOverwritePartitions:
		return true
	}
	return false
}

// ReadsCatalog reports whether a write in this mode keeps the existing table,
// so its registered column types must win over caller hints.
func (m WriteMode) ReadsCatalog() bool {
	return m == WriteModeAppend || m == WriteModeOverwritePartitions
}

// Compression names the codec applied to written objects. Empty means none.
type Compression string

// Supported compression codecs.
const (
	CompressionNone   Compression = ""
	CompressionGzip   Compression = "gzip"
	CompressionSnappy Compression = "snappy"
)

var compressionExt = map[Compression]string{
	CompressionNone:   "",
	CompressionGzip:   ".gz",
	CompressionSnappy: ".snappy",
}

// Extension returns the file-name suffix for the codec and whether the codec is supported.
func (c Compression) Extension() (string, bool) {
	ext, ok := compressionExt[c]
	return ext, ok
}

// FileFormat is the physical format of written objects.
type FileFormat string

// Supported file formats.
const (
	FileFormatCSV     FileFormat = "csv"
	FileFormatParquet FileFormat = "parquet"
)

// TypeMap maps column names to catalog type strings such as "bigint" or "decimal(10,2)".
type TypeMap map[string]string

// Clone returns a shallow copy of m. A nil map clones to an empty, non-nil map.
func (m TypeMap) Clone() TypeMap {
	out := make(TypeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WriteArgs describes how a table should be written.
//
// Optional values use their zero value for "not supplied", except
// Description, Parameters and ColumnsComments where nil is "not supplied"
// and an empty non-nil value counts as supplied.
type WriteArgs struct {
	Path            string
	Dataset         bool
	PartitionCols   []string
	Mode            WriteMode
	Database        string
	Table           string
	Description     *string
	Parameters      map[string]string
	ColumnsComments map[string]string
	Compression     Compression
	Format          FileFormat
}

// PlannedObject is one object the write will produce.
type PlannedObject struct {
	Bucket          string
	Key             string
	URI             string
	PartitionValues []string
	Rows            int64
	UploadURL       string
	ExpiresAt       time.Time
}

// WritePlan lists the objects a prepared write will produce.
type WritePlan struct {
	Root    string
	Objects []PlannedObject
}
