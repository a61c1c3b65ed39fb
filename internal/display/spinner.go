package display

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress while a query is in flight
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner that draws to w
func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

func (s *Spinner) Start() {
	s.s.Start()
}

func (s *Spinner) Stop() {
	s.s.Stop()
}
