package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

func TestPrintTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	PrintTable(&buf, []string{"A", "BB"}, [][]string{{"xxx", "y"}, {"z", ""}})

	assert.Equal(t, "A    BB\nxxx  y\nz\n", buf.String())
}

func TestPrintDetail_SkipsEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	PrintDetail(&buf, [][2]string{{"Path", "s3://b/k"}, {"Description", ""}, {"Rows", "3"}})

	assert.Equal(t, "Path: s3://b/k\nRows: 3\n", buf.String())
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, "json", defaultOutputFormat(&bytes.Buffer{}))
	require.NoError(t, validateOutputFormat("table"))
	require.NoError(t, validateOutputFormat("json"))
	require.Error(t, validateOutputFormat("yaml"))
}

func TestPrintError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	t.Run("json includes kind", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		printError(&stdout, &stderr, "json", domain.ErrEmptyInput())

		var got map[string]string
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		assert.Equal(t, "empty_input", got["kind"])
		assert.NotEmpty(t, got["error"])
		assert.Empty(t, stderr.String())
	})

	t.Run("text goes to stderr", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		printError(&stdout, &stderr, "table", errors.New("boom"))

		assert.Empty(t, stdout.String())
		assert.Equal(t, "Error: boom\n", stderr.String())
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrNotFound("x"), "not_found"},
		{domain.ErrValidation("x"), "validation"},
		{domain.ErrInvalidArgumentValue("x"), "invalid_argument_value"},
		{domain.ErrInvalidArgumentCombination("x"), "invalid_argument_combination"},
		{domain.ErrDuplicateColumns([]string{"a"}), "duplicate_columns"},
		{domain.ErrUnsupportedType("uuid"), "unsupported_type"},
		{domain.ErrCast("a", "int", errors.New("bad")), "cast"},
		{errors.New("plain"), ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, errorKind(tc.err), tc.err.Error())
	}
}
