package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/ror-cli/internal/config"
	"github.com/sells-group/ror-cli/internal/model"
)

const (
	testIntermediate = "working_file_with_rors_added_by_name.csv"
	testMinimal      = "working_file_minimal.csv"
)

// fakeResolver answers from a fixed table and records every query.
type fakeResolver struct {
	mu      sync.Mutex
	answers map[string]model.Resolution
	queries []string
}

func (f *fakeResolver) Resolve(_ context.Context, orgName string) model.Resolution {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, orgName)
	return f.answers[orgName]
}

func testConfig(dir string) config.PipelineConfig {
	return config.PipelineConfig{
		MaxColumns:       40,
		WorkDir:          dir,
		IntermediateFile: testIntermediate,
		MinimalFile:      testMinimal,
	}
}

func writeCSV(t *testing.T, path string, records [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, f.Close())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

var inputHeader = []string{
	model.ColResourceName,
	model.ColParentOrgName,
	model.ColCuratedROR,
	model.ColResourceURL,
	model.ColAlternateURLs,
}

func writeInput(t *testing.T, dir string, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	writeCSV(t, path, append([][]string{inputHeader}, rows...))
	return path
}
