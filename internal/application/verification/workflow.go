package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutor-radar/internal/domain"
)

// Step is a stage of the varsity verification workflow.
type Step string

const (
	StepInput    Step = "INPUT"
	StepVerify   Step = "VERIFY"
	StepVerified Step = "VERIFIED"
)

// Event moves a Workflow between steps.
type Event string

const (
	EventCodeSent Event = "code_sent"
	EventVerified Event = "verified"
	EventBack     Event = "back"
)

var ErrInvalidTransition = fmt.Errorf("invalid workflow transition: %w", domain.ErrConflict)

var errNothingToRetry = fmt.Errorf("no pending affiliation to save: %w", ErrInvalidTransition)

// transitions lists every legal move. An event missing for a step is rejected.
var transitions = map[Step]map[Event]Step{
	StepInput: {
		EventCodeSent: StepVerify,
	},
	StepVerify: {
		EventVerified: StepVerified,
		EventBack:     StepInput,
	},
	StepVerified: {
		EventCodeSent: StepVerify,
		EventBack:     StepInput,
	},
}

// Next returns the step reached from s on e.
func Next(s Step, e Event) (Step, error) {
	to, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%s on %s: %w", e, s, ErrInvalidTransition)
	}
	return to, nil
}

// Workflow drives one tutor through send, verify and save. It holds the
// email entered at the input step and, after a failed save, the parsed
// affiliation so RetrySave can re-run only the write.
//
// A Workflow is not safe for concurrent use.
type Workflow struct {
	svc         Service
	tutorID     string
	step        Step
	email       string
	message     string
	affiliation *domain.Affiliation
	pending     *domain.Affiliation
}

func NewWorkflow(svc Service, tutorID string) *Workflow {
	return &Workflow{svc: svc, tutorID: tutorID, step: StepInput}
}

// ResumeWorkflow rebuilds a workflow sitting at the verify step for a code
// already sent to email.
func ResumeWorkflow(svc Service, tutorID, email string) *Workflow {
	return &Workflow{svc: svc, tutorID: tutorID, step: StepVerify, email: email}
}

func (w *Workflow) Step() Step                       { return w.step }
func (w *Workflow) Email() string                    { return w.email }
func (w *Workflow) Message() string                  { return w.message }
func (w *Workflow) Affiliation() *domain.Affiliation { return w.affiliation }

// Pending reports whether a verified affiliation is waiting on RetrySave.
func (w *Workflow) Pending() bool { return w.pending != nil }

func (w *Workflow) SendCode(ctx context.Context, email string) error {
	next, err := Next(w.step, EventCodeSent)
	if err != nil {
		return w.failed(err)
	}
	if _, err := w.svc.SendCode(ctx, w.tutorID, email); err != nil {
		return w.failed(err)
	}
	w.step = next
	w.email = email
	w.pending = nil
	w.message = "Code sent to " + email + "."
	return nil
}

func (w *Workflow) Verify(ctx context.Context, code string) error {
	next, err := Next(w.step, EventVerified)
	if err != nil {
		return w.failed(err)
	}
	info, err := w.svc.Verify(ctx, w.tutorID, w.email, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotSaved) && info != nil {
			w.pending = info
		}
		return w.failed(err)
	}
	w.verified(next, info)
	return nil
}

// RetrySave re-attempts the profile write after Verify failed with
// domain.ErrNotSaved. No new code is matched.
func (w *Workflow) RetrySave(ctx context.Context) error {
	if w.pending == nil {
		return w.failed(errNothingToRetry)
	}
	next, err := Next(w.step, EventVerified)
	if err != nil {
		return w.failed(err)
	}
	if err := w.svc.SaveAffiliation(ctx, w.tutorID, *w.pending); err != nil {
		return w.failed(err)
	}
	w.verified(next, w.pending)
	return nil
}

// Back returns to the input step, discarding any pending save.
func (w *Workflow) Back() error {
	next, err := Next(w.step, EventBack)
	if err != nil {
		return w.failed(err)
	}
	w.step = next
	w.pending = nil
	w.message = ""
	return nil
}

func (w *Workflow) verified(next Step, info *domain.Affiliation) {
	w.step = next
	w.affiliation = info
	w.pending = nil
	w.message = fmt.Sprintf("Verified: %s, %s.", info.Department, info.Batch)
}

func (w *Workflow) failed(err error) error {
	w.message = Message(err)
	return err
}
