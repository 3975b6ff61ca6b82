package flow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
	"github.com/kode4food/courier/pkg/steps"
)

// JobUpdate is a validated change to the bound job. It only applies when
// the flow still carries JobID with status From
type JobUpdate struct {
	JobID      api.JobID
	From       api.JobStatus
	To         api.JobStatus
	Step       api.StepID
	AgentID    api.AgentID
	ETAMinutes int
	ResetAfter time.Duration
}

const (
	resetManual    = "manual"
	resetScheduled = "scheduled"
)

// AssignJob binds an in-flight job to the active service flow and moves to
// the step that presents a pending job. Assigning the bound job again
// changes nothing
func (s *Store) AssignJob(id api.JobID) (StepConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if id == "" {
		return configOf(cur), api.ErrInvalidJobID
	}
	if !cur.IsActive {
		return s.refuse(cur, reasonNotActive, ErrNotActive)
	}
	f, ok := s.activeFlow(cur)
	if !ok {
		return s.refuse(cur, reasonNoService, ErrNoService)
	}
	if cur.JobID == id {
		return configOf(cur), nil
	}

	s.cancelReset()
	step, _ := f.StepFor(api.JobPending)
	return s.navigate("job", cur.
		ClearJob().
		SetJob(id, api.JobPending).
		SetStep(step, steps.Panel(f.Namespace, step)),
	), nil
}

// ApplyJobUpdate commits a job status change and its navigation as one
// replacement. Updates for a job or status the flow no longer carries are
// refused with ErrStaleUpdate
func (s *Store) ApplyJobUpdate(u JobUpdate) (StepConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !cur.IsActive || cur.JobID != u.JobID || cur.JobStatus != u.From {
		return configOf(cur), fmt.Errorf(
			"%w: job %q status %q, flow has job %q status %q",
			ErrStaleUpdate, u.JobID, u.From, cur.JobID, cur.JobStatus,
		)
	}
	f, ok := s.activeFlow(cur)
	if !ok || !f.Contains(u.Step) {
		return configOf(cur), foreignStepError(u.Step, namespaceOf(cur))
	}

	next := cur.
		SetJob(u.JobID, u.To).
		SetStep(u.Step, steps.Panel(f.Namespace, u.Step))
	if u.AgentID != "" {
		next = next.SetMatchedAgent(u.AgentID, u.ETAMinutes)
	}
	res := s.navigate("job", next)
	if u.ResetAfter > 0 {
		s.scheduleReset(u.JobID, u.ResetAfter)
	}
	return res, nil
}

// ScheduleReset resets the flow after a delay, provided the job is still
// bound when the delay elapses. A later schedule replaces an earlier one
func (s *Store) ScheduleReset(id api.JobID, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleReset(id, after)
}

func (s *Store) scheduleReset(id api.JobID, after time.Duration) {
	s.cancelReset()
	if s.closed() {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(after, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.reset != t {
			return
		}
		s.reset = nil
		if s.state.Load().JobID != id {
			slog.Debug("Scheduled reset skipped", log.JobID(id))
			return
		}
		s.resetLocked(resetScheduled)
	})
	s.reset = t

	slog.Debug("Reset scheduled",
		log.JobID(id),
		slog.Duration("after", after))
}
