// Package models provides data structures returned by the Galaxy API.
//
// This file defines histories, the named containers a user's datasets
// live in.
package models

// History represents a Galaxy history (a named workspace of datasets)
type History struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
	Purged     bool   `json:"purged,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
}
