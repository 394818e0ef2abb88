package workflow

import (
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// State is a workflow state.
type State int

const (
	Idle State = iota
	Acquiring
	Ready
	Submitting
	Resulted
	FeedbackOpen
	FeedbackSubmitting
	FeedbackResolved
)

var stateNames = []string{
	Idle:               "idle",
	Acquiring:          "acquiring",
	Ready:              "ready",
	Submitting:         "submitting",
	Resulted:           "resulted",
	FeedbackOpen:       "feedback_open",
	FeedbackSubmitting: "feedback_submitting",
	FeedbackResolved:   "feedback_resolved",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown workflow state %q", b)
}

// InFlight reports whether a request is outstanding in s.
func (s State) InFlight() bool {
	return s == Submitting || s == FeedbackSubmitting
}

// SubmissionStatus tracks one prediction request.
type SubmissionStatus string

const (
	Pending   SubmissionStatus = "pending"
	Succeeded SubmissionStatus = "succeeded"
	Failed    SubmissionStatus = "failed"
)

// Submission is one prediction request. Its ID tags the response so late
// answers can be recognized.
type Submission struct {
	ID       string
	Session  *acquisition.Session
	Language string
	Status   SubmissionStatus
	Result   *models.ResultSet
	Err      error
	Started  time.Time
	Finished time.Time
}

// Transition describes one state change.
type Transition struct {
	From     State
	To       State
	Result   *models.ResultSet
	Insights *models.Insights
	Err      error
}

// Listener observes transitions.
type Listener func(Transition)
