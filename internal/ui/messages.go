package ui

import (
	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

// WindowMsg reports one completed 10-second measurement window for the
// file currently being processed.
type WindowMsg struct {
	WindowIndex int
	Results     wfmeter.Results
}

// FileStartMsg indicates a new file has started processing.
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing.
type FileCompleteMsg struct {
	FileIndex int
	Final     wfmeter.Results
	Error     error
}

// AllCompleteMsg indicates all files have been processed.
type AllCompleteMsg struct{}
