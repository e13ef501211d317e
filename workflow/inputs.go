package workflow

import (
	"strconv"

	"galaxy-sdk/models"
)

// SortParams are the sort tool settings
type SortParams struct {
	Column string
	Style  string
	Order  string
}

// DefaultSortParams sorts numerically ascending on the first column
func DefaultSortParams() SortParams {
	return SortParams{
		Column: "1",
		Style:  "num",
		Order:  "ASC",
	}
}

// SortInputs builds the invocation of tool on dataset inside historyID.
// The dataset is referenced by its hid, its numeric handle in the history.
func SortInputs(tool *models.Tool, dataset *models.Dataset, historyID string, p SortParams) *models.ToolInputs {
	return &models.ToolInputs{
		ToolID:    tool.ID,
		HistoryID: historyID,
		Inputs: map[string]string{
			"input1": strconv.Itoa(dataset.HID),
			"style":  p.Style,
			"order":  p.Order,
			"column": p.Column,
		},
	}
}
