package scheduler

import (
	"time"

	"github.com/dmitrymomot/outreach/internal/dispatch"
)

// Report summarises one pass.
type Report struct {
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	PassID     string            `json:"passId"`
	Results    []dispatch.Result `json:"results"`
	Scanned    int               `json:"scanned"`
	Due        int               `json:"due"`
	Duplicates int               `json:"duplicates"`
	Sent       int               `json:"sent"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
}

func (r *Report) add(res dispatch.Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case dispatch.OutcomeSent:
		r.Sent++
	case dispatch.OutcomeSkipped:
		r.Skipped++
	case dispatch.OutcomeFailed:
		r.Failed++
	}
	// A send whose ledger append failed is both sent and failed.
	if res.Outcome == dispatch.OutcomeFailed && res.Sent {
		r.Sent++
	}
}
