package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageAugment  Stage = "augment"
	StageMinimize Stage = "minimize"
)

// RunStats counts what happened to rows during one stage.
type RunStats struct {
	RowsRead       int `json:"rows_read"`
	Lookups        int `json:"lookups"`
	Matched        int `json:"matched"`
	RecordsWritten int `json:"records_written"`
	Skipped        int `json:"skipped"`
	HumanCurated   int `json:"human_curated"`
	ByName         int `json:"by_name"`
}

// Run is one persisted stage execution.
type Run struct {
	ID          string     `json:"id"`
	Stage       Stage      `json:"stage"`
	InputPath   string     `json:"input_path"`
	OutputPath  string     `json:"output_path"`
	Status      RunStatus  `json:"status"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
