package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RunID identifies one batch of experiments
type RunID ID

func (id RunID) String() string { return ID(id).String() }

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ArtifactKind names a file produced for a run
type ArtifactKind string

const (
	ArtifactHistogramPNG  ArtifactKind = "histogram_png"
	ArtifactHistogramHTML ArtifactKind = "histogram_html"
	ArtifactWorkbook      ArtifactKind = "workbook"
	ArtifactMarkdown      ArtifactKind = "markdown"
	ArtifactHTMLReport    ArtifactKind = "html_report"
)

// Artifact is a file written for a run
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}
