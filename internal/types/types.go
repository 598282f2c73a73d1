package types

import (
	"fmt"
	"time"
)

// MediaAsset is a probed media file. Duration is always > 0 for materials.
type MediaAsset struct {
	Path     string
	Duration float64 // seconds
}

// SelectionPlan is the ordered clip list chosen for one job. Repeats are allowed.
type SelectionPlan struct {
	Clips   []MediaAsset
	Total   float64
	Target  float64
	Refills int

	// ShortInventory is set when the pool summed once is shorter than Target.
	ShortInventory bool
}

func (p SelectionPlan) Empty() bool { return len(p.Clips) == 0 }

type Outcome string

const (
	OutcomeSucceeded              Outcome = "succeeded"
	OutcomeSkippedNoAudioDuration Outcome = "skipped-no-audio-duration"
	OutcomeSkippedNoSelection     Outcome = "skipped-no-selection"
	OutcomeFailedConcat           Outcome = "failed-concat"
	OutcomeFailedMerge            Outcome = "failed-merge"
	OutcomeCancelled              Outcome = "cancelled"
)

// JobResult is the terminal state of one audio input.
type JobResult struct {
	AudioPath      string
	OutputPath     string
	TargetDuration float64
	Plan           SelectionPlan
	Outcome        Outcome
	Err            error
	Elapsed        time.Duration
}

type RunSummary struct {
	Attempted int
	Succeeded int
	Cancelled bool
	Jobs      []JobResult
}

// Failed counts jobs that ended in a concat or merge failure.
func (s RunSummary) Failed() int {
	n := 0
	for _, j := range s.Jobs {
		if j.Outcome == OutcomeFailedConcat || j.Outcome == OutcomeFailedMerge {
			n++
		}
	}
	return n
}

// Message is the one-line run outcome shown to users.
func (s RunSummary) Message() string {
	msg := fmt.Sprintf("%d of %d audio files converted", s.Succeeded, s.Attempted)
	if s.Cancelled {
		return "cancelled: " + msg
	}
	return msg
}
