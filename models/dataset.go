package models

// DatasetState is the processing state Galaxy reports for a dataset
type DatasetState string

// States Galaxy reports. Only DatasetStateOK marks a dataset as ready.
const (
	DatasetStateNew         DatasetState = "new"
	DatasetStateUpload      DatasetState = "upload"
	DatasetStateQueued      DatasetState = "queued"
	DatasetStateRunning     DatasetState = "running"
	DatasetStateSetMetadata DatasetState = "setting_metadata"
	DatasetStateOK          DatasetState = "ok"
	DatasetStateError       DatasetState = "error"
	DatasetStatePaused      DatasetState = "paused"
)

// Ready reports whether the state is the terminal success state
func (s DatasetState) Ready() bool {
	return s == DatasetStateOK
}

// Dataset is a snapshot of a history item as returned by
// /api/histories/{history_id}/contents/{id}
type Dataset struct {
	ID        string       `json:"id"`
	HID       int          `json:"hid"`
	Name      string       `json:"name"`
	State     DatasetState `json:"state"`
	Extension string       `json:"extension,omitempty"`
	FileSize  int64        `json:"file_size,omitempty"`
	HistoryID string       `json:"history_id,omitempty"`
	MiscInfo  string       `json:"misc_info,omitempty"`
}

// OutputDataset is a dataset reference returned when a tool is run
type OutputDataset struct {
	ID         string       `json:"id"`
	HID        int          `json:"hid"`
	Name       string       `json:"name"`
	State      DatasetState `json:"state,omitempty"`
	OutputName string       `json:"output_name,omitempty"`
}
