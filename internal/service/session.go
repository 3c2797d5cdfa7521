package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/builder"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/flow"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schedule"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownStep     = errors.New("unknown step")
	ErrNotCompleted    = errors.New("session is not completed")
	ErrInvalidPosition = errors.New("position is out of range or hidden")
	ErrCannotProceed   = errors.New("current step is not answered")
)

const (
	DefaultSessionTTL  = 2 * time.Hour
	DefaultSessionSize = 1024
)

type SessionConfig struct {
	TTL  time.Duration
	Size int
}

type session struct {
	id        string
	owner     string
	createdAt time.Time

	mu    sync.Mutex
	state flow.State
	// done is set once Complete has saved the medication
	done bool
}

// SessionService keeps live wizard runs. Sessions live in memory only
// and expire after the configured TTL of inactivity.
type SessionService struct {
	engine   *flow.Engine
	builder  *builder.Builder
	meds     *MedicationService
	bus      EventBus
	sessions *expirable.LRU[string, *session]
	log      *zap.Logger
}

func NewSessionService(engine *flow.Engine, b *builder.Builder, meds *MedicationService, bus EventBus, cfg SessionConfig, log *zap.Logger) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultSessionSize
	}
	if bus == nil {
		bus = NopBus{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		engine:   engine,
		builder:  b,
		meds:     meds,
		bus:      bus,
		sessions: expirable.NewLRU[string, *session](cfg.Size, nil, cfg.TTL),
		log:      log,
	}
}

// SectionView identifies the section of the current step
type SectionView struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StepView is a step as sent to clients
type StepView struct {
	question.Step
	Conditional bool `json:"conditional"`
}

func newStepView(step question.Step) StepView {
	return StepView{Step: step, Conditional: step.Conditional()}
}

// View is everything a client needs to render a session
type View struct {
	ID           string                    `json:"id"`
	State        flow.State                `json:"state"`
	Instructions *question.InstructionPage `json:"instructions,omitempty"`
	Section      *SectionView              `json:"section,omitempty"`
	Step         *StepView                 `json:"step,omitempty"`
	Progress     flow.Progress             `json:"progress"`
	CanProceed   bool                      `json:"canProceed"`
	DoseTimes    []question.TimeEntry      `json:"doseTimes"`
}

// CatalogSection is a section with client-facing steps
type CatalogSection struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Steps       []StepView `json:"steps"`
}

// CatalogView describes the whole question catalog
type CatalogView struct {
	Instructions question.InstructionPage `json:"instructions"`
	Sections     []CatalogSection         `json:"sections"`
	TotalSteps   int                      `json:"totalSteps"`
}

// Catalog returns the catalog in client form
func (s *SessionService) Catalog() CatalogView {
	c := s.engine.Catalog()
	view := CatalogView{
		Instructions: c.Intro(),
		Sections:     make([]CatalogSection, 0, c.SectionCount()),
		TotalSteps:   c.TotalSteps(),
	}
	for _, section := range c.Sections() {
		cs := CatalogSection{
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
			Steps:       make([]StepView, 0, len(section.Steps)),
		}
		for _, step := range section.Steps {
			cs.Steps = append(cs.Steps, newStepView(step))
		}
		view.Sections = append(view.Sections, cs)
	}
	return view
}

// Create starts a new session owned by owner
func (s *SessionService) Create(ctx context.Context, owner string) (View, error) {
	sess := &session{
		id:        ulid.Make().String(),
		owner:     owner,
		createdAt: time.Now().UTC(),
		state:     s.engine.Start(),
	}
	s.sessions.Add(sess.id, sess)
	s.log.Debug("Session created", zap.String("session_id", sess.id), zap.String("owner", owner))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Get returns the current view of a session
func (s *SessionService) Get(ctx context.Context, owner, id string) (View, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return View{}, ErrSessionNotFound
	}
	return s.view(sess), nil
}

// Answer records the answer for stepID
func (s *SessionService) Answer(ctx context.Context, owner, id, stepID string, value question.Value) (View, error) {
	step, _, ok := s.engine.Catalog().Find(stepID)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}
	if step.Type == question.TypeTimeList {
		if err := schedule.ValidateEntries(value.Entries()); err != nil {
			return View{}, err
		}
	}
	return s.mutate(owner, id, func(st flow.State) (flow.State, error) {
		return s.engine.UpdateAnswer(st, stepID, value), nil
	})
}

// Next advances the session. With enforce set it refuses to leave a
// step that cannot proceed.
func (s *SessionService) Next(ctx context.Context, owner, id string, enforce bool) (View, error) {
	return s.mutate(owner, id, func(st flow.State) (flow.State, error) {
		if enforce && !s.engine.CanProceed(st) {
			return st, ErrCannotProceed
		}
		return s.engine.Next(st), nil
	})
}

func (s *SessionService) Previous(ctx context.Context, owner, id string) (View, error) {
	return s.mutate(owner, id, func(st flow.State) (flow.State, error) {
		return s.engine.Previous(st), nil
	})
}

func (s *SessionService) Reset(ctx context.Context, owner, id string) (View, error) {
	return s.mutate(owner, id, func(flow.State) (flow.State, error) {
		return s.engine.Reset(), nil
	})
}

// Jump moves to a visible step
func (s *SessionService) Jump(ctx context.Context, owner, id string, pos question.Position) (View, error) {
	return s.mutate(owner, id, func(st flow.State) (flow.State, error) {
		next, ok := s.engine.JumpTo(st, pos)
		if !ok {
			return st, fmt.Errorf("%w: section %d step %d", ErrInvalidPosition, pos.Section, pos.Step)
		}
		return next, nil
	})
}

// EditDoseTime changes one slot of the dose list. The first edit seeds
// the list from the derived times; the whole list is then kept as the
// dose_times answer.
func (s *SessionService) EditDoseTime(ctx context.Context, owner, id, slotID string, hour, minute int) (View, error) {
	return s.mutate(owner, id, func(st flow.State) (flow.State, error) {
		entries, err := schedule.EditSlot(doseSlots(st.Answers), slotID, hour, minute)
		if err != nil {
			return st, err
		}
		return s.engine.UpdateAnswer(st, question.DoseTimes, question.Times(entries...)), nil
	})
}

// Complete builds the medication from a finished session, saves it and
// discards the session
func (s *SessionService) Complete(ctx context.Context, owner, id string) (model.Medication, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return model.Medication{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// A concurrent Complete may have saved the record while we waited.
	if sess.done {
		return model.Medication{}, ErrSessionNotFound
	}
	if !sess.state.Completed {
		return model.Medication{}, ErrNotCompleted
	}

	med := s.builder.Build(sess.state.Answers)
	if err := s.meds.Save(ctx, &med); err != nil {
		return model.Medication{}, err
	}

	sess.done = true
	s.sessions.Remove(id)
	s.publishSession(sess, EventSessionCompleted, map[string]interface{}{
		"medicationId": med.ID,
	})
	s.log.Info("Session completed",
		zap.String("session_id", id),
		zap.String("medication_id", med.ID))
	return med, nil
}

// Discard drops a session
func (s *SessionService) Discard(ctx context.Context, owner, id string) error {
	if _, err := s.lookup(owner, id); err != nil {
		return err
	}
	s.sessions.Remove(id)
	return nil
}

// Len reports how many sessions are live
func (s *SessionService) Len() int {
	return s.sessions.Len()
}

func (s *SessionService) lookup(owner, id string) (*session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok || sess.owner != owner {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) mutate(owner, id string, fn func(flow.State) (flow.State, error)) (View, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return View{}, ErrSessionNotFound
	}

	next, err := fn(sess.state)
	if err != nil {
		return View{}, err
	}
	sess.state = next

	// Re-adding refreshes the idle timeout.
	s.sessions.Add(id, sess)
	s.publishSession(sess, EventSessionUpdated, map[string]interface{}{
		"sectionIndex": next.SectionIndex,
		"stepIndex":    next.StepIndex,
		"completed":    next.Completed,
	})
	return s.view(sess), nil
}

// view must be called with sess.mu held
func (s *SessionService) view(sess *session) View {
	st := sess.state
	v := View{
		ID:         sess.id,
		State:      st,
		Progress:   s.engine.Progress(st),
		CanProceed: s.engine.CanProceed(st),
		DoseTimes:  doseSlots(st.Answers),
	}
	if st.ShowingInstructions {
		intro := s.engine.Catalog().Intro()
		v.Instructions = &intro
	}
	if section, ok := s.engine.CurrentSection(st); ok {
		v.Section = &SectionView{
			Index:       st.SectionIndex,
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
		}
	}
	if step, ok := s.engine.CurrentStep(st); ok {
		sv := newStepView(step)
		v.Step = &sv
	}
	return v
}

// doseSlots returns the edited dose list, or the derived one labelled
// with fresh slot ids
func doseSlots(answers question.Answers) []question.TimeEntry {
	if entries := answers[question.DoseTimes].Entries(); len(entries) > 0 {
		return entries
	}
	return schedule.Slots(schedule.Derive(schedule.FromAnswers(answers)))
}

func (s *SessionService) publishSession(sess *session, eventType string, event map[string]interface{}) {
	event["type"] = eventType
	event["sessionId"] = sess.id
	if err := s.bus.PublishSession(sess.id, event); err != nil {
		s.log.Warn("Failed to publish session event", zap.String("session_id", sess.id), zap.Error(err))
	}
}
