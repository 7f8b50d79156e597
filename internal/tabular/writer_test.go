package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ror-cli/internal/model"
)

func TestRowWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := CreateRowWriter(path, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"1", "x, y"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x, y\"\n", string(data))
}

func TestRecordWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.csv")

	w, err := CreateRecordWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(model.SoftwareOrgRecord{
		SoftwareName:     "ToolX",
		GitHubSlug:       "acme/toolx",
		RORID:            "ror-1",
		OrgName:          "Acme",
		ExtractionMethod: model.MethodByName,
	}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"software_name,github_slug,ror_id,org_name,extraction_methods\nToolX,acme/toolx,ror-1,Acme,by_name\n",
		string(data))
}

func TestRecordWriter_EmptyRunHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.csv")

	w, err := CreateRecordWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "software_name,github_slug,ror_id,org_name,extraction_methods\n", string(data))
}

func TestCreateWriters_BadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing-dir", "out.csv")

	_, err := CreateRowWriter(bad, []string{"a"})
	assert.Error(t, err)

	_, err = CreateRecordWriter(bad)
	assert.Error(t, err)
}
