package models

// ToolSection is a tool panel section with its tools
type ToolSection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Elems []Tool `json:"elems"`
}

// Tool is a server-side executable operation
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToolInputs describes one tool invocation
type ToolInputs struct {
	ToolID    string            `json:"tool_id"`
	HistoryID string            `json:"history_id"`
	Inputs    map[string]string `json:"inputs"`
}

// Job is a job record created by a tool run
type Job struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	ToolID string `json:"tool_id"`
}

// ToolExecution is the response of POST /api/tools
type ToolExecution struct {
	Outputs []OutputDataset `json:"outputs"`
	Jobs    []Job           `json:"jobs"`
}
