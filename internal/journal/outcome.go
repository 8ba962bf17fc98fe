package journal

import (
	"encoding/json"

	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

// Pipeline steps reported in an Outcome.
const (
	StepStore       = "store"
	StepAnalyze     = "analyze"
	StepSynchronize = "synchronize"
)

type StepResult struct {
	Step string
	Err  error
}

func (r StepResult) OK() bool {
	return r.Err == nil
}

func (r StepResult) MarshalJSON() ([]byte, error) {
	v := struct {
		Step  string `json:"step"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}{Step: r.Step, OK: r.Err == nil}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return json.Marshal(v)
}

// Outcome is the result of a note pipeline. A failed step after the store
// step does not undo the steps before it.
type Outcome struct {
	Note         *models.Note       `json:"note"`
	Summary      *models.DaySummary `json:"summary"`
	Steps        []StepResult       `json:"steps"`
	SummaryStale bool               `json:"summaryStale"`
}

func (o *Outcome) record(step string, err error) {
	o.Steps = append(o.Steps, StepResult{Step: step, Err: err})
}

// StepErr returns the error recorded for step, or nil if the step succeeded
// or did not run.
func (o *Outcome) StepErr(step string) error {
	for _, r := range o.Steps {
		if r.Step == step {
			return r.Err
		}
	}
	return nil
}

// Ran reports whether step was attempted.
func (o *Outcome) Ran(step string) bool {
	for _, r := range o.Steps {
		if r.Step == step {
			return true
		}
	}
	return false
}
