package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ror-cli/internal/model"
)

func TestAugment_WritesEveryRow(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir,
		[]string{"Curated", "Known Org", "https://ror.org/known", "https://github.com/a/b", ""},
		[]string{"Lookup", "Acme", "#N/A", "", ""},
		[]string{"NoOrg", "", "", "", ""},
		[]string{"SentinelOrg", "#N/A", "", "", ""},
		[]string{"Miss", "Nowhere Institute", "0", "", ""},
	)
	fake := &fakeResolver{answers: map[string]model.Resolution{
		"Acme": {ProposedName: "Acme Corporation", ProposedID: "https://ror.org/01acme"},
	}}

	p := New(testConfig(dir), nil, fake)
	res, err := p.Augment(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, testIntermediate), res.OutputPath)
	assert.Equal(t, []string{"Acme", "Nowhere Institute"}, fake.queries)
	assert.Equal(t, model.RunStats{
		RowsRead:       5,
		Lookups:        2,
		Matched:        1,
		RecordsWritten: 5,
		Skipped:        3,
	}, res.Stats)

	got := readCSV(t, res.OutputPath)
	require.Len(t, got, 6)
	assert.Equal(t, append(append([]string{}, inputHeader...), model.ProposedColumns...), got[0])
	assert.Equal(t, []string{"Curated", "Known Org", "https://ror.org/known", "https://github.com/a/b", "", "", ""}, got[1])
	assert.Equal(t, []string{"Lookup", "Acme", "#N/A", "", "", "Acme Corporation", "https://ror.org/01acme"}, got[2])
	assert.Equal(t, []string{"Miss", "Nowhere Institute", "0", "", "", "", ""}, got[5])
}

func TestAugment_TruncatesAndPads(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "wide.csv")
	writeCSV(t, input, [][]string{
		{model.ColResourceName, model.ColParentOrgName, "extra1", "extra2"},
		{"ToolA", "Acme", "x", "y"},
		{"ToolB"},
	})

	cfg := testConfig(dir)
	cfg.MaxColumns = 3
	fake := &fakeResolver{answers: map[string]model.Resolution{
		"Acme": {ProposedName: "Acme", ProposedID: "ror-1"},
	}}

	res, err := New(cfg, nil, fake).Augment(context.Background(), input)
	require.NoError(t, err)

	got := readCSV(t, res.OutputPath)
	require.Len(t, got, 3)
	assert.Equal(t, []string{model.ColResourceName, model.ColParentOrgName, "extra1", model.ColProposedName, model.ColProposedRORID}, got[0])
	assert.Equal(t, []string{"ToolA", "Acme", "x", "Acme", "ror-1"}, got[1])
	assert.Equal(t, []string{"ToolB", "", "", "", ""}, got[2])
}

func TestAugment_OutputNextToInput(t *testing.T) {
	work := t.TempDir()
	inputDir := t.TempDir()
	input := writeInput(t, inputDir, []string{"Tool", "", "", "", ""})

	res, err := New(testConfig(work), nil, &fakeResolver{}).Augment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(inputDir, testIntermediate), res.OutputPath)
	assert.FileExists(t, res.OutputPath)
	assert.NoFileExists(t, filepath.Join(work, testIntermediate))
}

func TestAugment_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := New(testConfig(dir), nil, &fakeResolver{}).Augment(context.Background(), filepath.Join(dir, "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: open input")

	_, statErr := os.Stat(filepath.Join(dir, testIntermediate))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAugment_RejectsInputNamedLikeOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, testIntermediate)
	writeCSV(t, input, [][]string{inputHeader, {"Lookup", "Acme", "", "", ""}})
	before, err := os.ReadFile(input)
	require.NoError(t, err)

	fake := &fakeResolver{}
	_, err = New(testConfig(dir), nil, fake).Augment(context.Background(), input)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInputIsOutput))
	assert.Empty(t, fake.queries)

	after, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAugment_RejectsRelativeAliasOfOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, testIntermediate)
	writeCSV(t, input, [][]string{inputHeader})

	alias := filepath.Join(dir, "sub", "..", testIntermediate)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	_, err := New(testConfig(dir), nil, &fakeResolver{}).Augment(context.Background(), alias)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInputIsOutput))
}

func TestAugment_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []string{"Lookup", "Acme", "", "", ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeResolver{}
	_, err := New(testConfig(dir), nil, fake).Augment(ctx, input)
	require.Error(t, err)
	assert.Empty(t, fake.queries)
}
