package domain

import (
	"fmt"
	"strings"
)

type ImportMode string

const (
	ModeOverwrite ImportMode = "overwrite"
	ModeAppend    ImportMode = "append"
	ModeUpdate    ImportMode = "update"
)

func ParseImportMode(s string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOverwrite, ModeAppend, ModeUpdate:
		return m, nil
	case "":
		return ModeUpdate, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

// RowError is a failure isolated to one source row.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes one import run. It is never persisted.
type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

func (r *ImportResult) AddCreated() { r.Created++ }
func (r *ImportResult) AddUpdated() { r.Updated++ }

func (r *ImportResult) AddError(row int, err error) {
	r.Errors = append(r.Errors, RowError{Row: row, Error: err.Error()})
}

// Failed reports the number of rows that ended in an error.
func (r *ImportResult) Failed() int { return len(r.Errors) }
