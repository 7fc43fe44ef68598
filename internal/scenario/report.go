package scenario

import (
	"fmt"
	"io"

	"github.com/dshills/eventhub"
)

// Report is the outcome of a scenario run.
type Report struct {
	Name     string
	Steps    int
	Calls    int
	Failures []Failure
	Stats    eventhub.Stats
}

// Failure is a check that did not hold.
type Failure struct {
	// Step locates the step: its 1-based index, prefixed by the handler name
	// for handler steps ("rearm/1").
	Step    string
	Message string
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Write prints a summary followed by one line per failure.
func (r *Report) Write(w io.Writer) error {
	status := "PASS"
	if r.Failed() {
		status = "FAIL"
	}
	if _, err := fmt.Fprintf(w, "%s %s (%d steps, %d calls, %d emits)\n",
		status, r.Name, r.Steps, r.Calls, r.Stats.Emits); err != nil {
		return err
	}
	for _, f := range r.Failures {
		if _, err := fmt.Fprintf(w, "  step %s: %s\n", f.Step, f.Message); err != nil {
			return err
		}
	}
	return nil
}
