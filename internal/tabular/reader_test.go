package tabular

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ror-cli/internal/model"
)

func TestOpen_CSV(t *testing.T) {
	path := writeFile(t, "in.csv", "Resource_Name,Parent Org Name\nToolX,Acme\nToolY,\n")

	r, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	assert.Equal(t, []string{"Resource_Name", "Parent Org Name"}, r.Header().Names())

	var names []string
	for {
		row, ok := r.Next()
		if !ok {
			break
		}
		names = append(names, row.Value(model.ColResourceName)+"|"+row.Value(model.ColParentOrgName))
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"ToolX|Acme", "ToolY|"}, names)
}

func TestOpen_XLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"Resource_Name"}, {"ToolX"}},
	})

	r, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	row, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "ToolX", row.Value(model.ColResourceName))

	_, ok = r.Next()
	assert.False(t, ok)
	assert.NoError(t, r.Err())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tabular: open")

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
}

func TestOpen_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, err := Open(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReader_CloseEarly(t *testing.T) {
	path := writeFile(t, "in.csv", "a\n1\n2\n3\n")

	r, err := Open(context.Background(), path)
	require.NoError(t, err)

	_, ok := r.Next()
	require.True(t, ok)
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "close is idempotent")
}
