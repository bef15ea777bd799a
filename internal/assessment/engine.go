// Package assessment runs reading assessment sessions: it hands out the
// item set, records answers, scores finished sessions and asks the feedback
// generator for advice.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/feedback"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/scoring"
	"github.com/chaspy/toeic-assessment-poc/internal/session"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// Finish modes, as reported to the Recorder and the event log.
const (
	ModeFull = "full"
	ModeLite = "lite"
)

// Recorder receives engine activity for metrics.
type Recorder interface {
	SessionStarted()
	AnswerRecorded(correct bool)
	SessionFinished(mode string, band scoring.Band)
	GeneratorCalled(purpose string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()                              {}
func (nopRecorder) AnswerRecorded(bool)                          {}
func (nopRecorder) SessionFinished(string, scoring.Band)         {}
func (nopRecorder) GeneratorCalled(string, time.Duration, error) {}

// Engine is the only component that checks constraints across sessions
// and items. It is safe for concurrent use.
type Engine struct {
	store     *session.Store[Result]
	items     []item.Item
	scale     scoring.Scale
	weakest   int
	generator feedback.Generator
	explainer feedback.Explainer
	sink      telemetry.Sink
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithExplainer sets the explanation capability. By default the generator
// is used when it can explain, otherwise explanations come from the item's
// rationales.
func WithExplainer(x feedback.Explainer) Option {
	return func(e *Engine) { e.explainer = x }
}

// WithSink sets where lifecycle events and results are written.
func WithSink(s telemetry.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source used for answer timestamps and
// durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithScale overrides the scoring scale.
func WithScale(s scoring.Scale) Option {
	return func(e *Engine) { e.scale = s }
}

// New builds an engine over store. The blueprint is drawn from the pool
// once, so every session gets the same ordered item list.
func New(store *session.Store[Result], pool *item.Pool, bp item.Blueprint, generator feedback.Generator, opts ...Option) (*Engine, error) {
	if store == nil || pool == nil || generator == nil {
		return nil, errors.New("assessment: store, pool and generator are required")
	}
	items, err := bp.Select(pool.Items())
	if err != nil {
		return nil, fmt.Errorf("select blueprint: %w", err)
	}

	e := &Engine{
		store:     store,
		items:     items,
		scale:     scoring.DefaultScale(),
		weakest:   skills.DefaultWeakest,
		generator: generator,
		sink:      telemetry.Nop{},
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.explainer == nil {
		if x, ok := generator.(feedback.Explainer); ok {
			e.explainer = x
		} else {
			e.explainer = feedback.NewCatalogGenerator(nil)
		}
	}
	return e, nil
}

// Items returns the item list every session is assigned.
func (e *Engine) Items() []item.Item {
	return e.items
}

// Start creates a session over the blueprint items.
func (e *Engine) Start(ctx context.Context, userAgent string) StartOutput {
	s := e.store.Create(e.items)

	e.recorder.SessionStarted()
	e.emit(ctx, telemetry.EventAssessmentStarted, s.ID, map[string]any{
		"ua":    userAgent,
		"items": len(s.Items),
	})
	e.logger.Info("assessment started", zap.String("session_id", s.ID), zap.Int("items", len(s.Items)))

	return StartOutput{SessionID: s.ID, Items: s.Items}
}

// Answer records a submission, replacing any earlier answer on the same
// item, and returns the next unanswered item. Answers are still accepted
// after the session has been finished; a later finish rescores them.
func (e *Engine) Answer(ctx context.Context, in AnswerInput) (NextOutput, error) {
	switch {
	case in.SessionID == "":
		return NextOutput{}, fmt.Errorf("%w: sessionId is required", ErrValidation)
	case in.ItemID == "":
		return NextOutput{}, fmt.Errorf("%w: itemId is required", ErrValidation)
	case in.Selected < 0:
		return NextOutput{}, fmt.Errorf("%w: selected must not be negative", ErrValidation)
	case in.RtMs < 0:
		return NextOutput{}, fmt.Errorf("%w: rtMs must not be negative", ErrValidation)
	}

	var (
		ev   session.AnswerEvent
		next *item.Item
	)
	err := e.store.Update(in.SessionID, func(s *session.Session[Result]) error {
		it, _, ok := s.Item(in.ItemID)
		if !ok {
			return fmt.Errorf("%w: %q is not part of the session", ErrInvalidItem, in.ItemID)
		}
		if !it.HasOption(in.Selected) {
			return fmt.Errorf("%w: option %d out of range for %q", ErrInvalidItem, in.Selected, it.ID)
		}
		ev = session.RecordedAnswer(it, in.Selected, in.RtMs, e.now())
		ev.SessionID = s.ID
		s.Record(ev)
		next = s.NextUnanswered()
		return nil
	})
	if err != nil {
		return NextOutput{}, e.sessionErr(in.SessionID, err)
	}

	e.recorder.AnswerRecorded(ev.Correct)
	e.emit(ctx, telemetry.EventAnswerSubmitted, in.SessionID, map[string]any{
		"itemId":   ev.ItemID,
		"selected": ev.Selected,
		"correct":  ev.Correct,
		"rtMs":     ev.RtMs,
	})
	e.logger.Debug("answer recorded",
		zap.String("session_id", in.SessionID),
		zap.String("item_id", ev.ItemID),
		zap.Bool("correct", ev.Correct),
		zap.Int64("rt_ms", ev.RtMs),
	)

	return NextOutput{NextItem: next}, nil
}

// Next returns the first assigned item that has no answer yet.
func (e *Engine) Next(_ context.Context, sessionID string) (NextOutput, error) {
	next, err := e.store.NextUnanswered(sessionID)
	if err != nil {
		return NextOutput{}, e.sessionErr(sessionID, err)
	}
	return NextOutput{NextItem: next}, nil
}

// Finish scores the session and asks the generator for advice on the
// weakest skills. If the generator fails nothing is stored and
// ErrGeneratorUnavailable is returned; feedback is never silently dropped.
// Finishing again rescores the current answers and overwrites the result.
// If the session is answered or finished by another request while advice
// is being generated, nothing is stored and ErrConflict is returned.
func (e *Engine) Finish(ctx context.Context, sessionID string) (Result, error) {
	s, err := e.store.Get(sessionID)
	if err != nil {
		return Result{}, e.sessionErr(sessionID, err)
	}

	sc := score(e.scale, s, e.weakest)
	advice, err := e.advise(ctx, s.ID, sc)
	if err != nil {
		e.logger.Warn("insights generation failed", zap.String("session_id", sessionID), zap.Error(err))
		return Result{}, err
	}
	sc.result.Insights = advice

	return e.save(ctx, s, sc.result, ModeFull)
}

// FinishLite scores the session without generating advice.
func (e *Engine) FinishLite(ctx context.Context, sessionID string) (Result, error) {
	s, err := e.store.Get(sessionID)
	if err != nil {
		return Result{}, e.sessionErr(sessionID, err)
	}
	return e.save(ctx, s, score(e.scale, s, e.weakest).result, ModeLite)
}

// Insights generates advice for the session's current answers without
// finishing it. At least one answer is required.
func (e *Engine) Insights(ctx context.Context, sessionID string) (InsightsOutput, error) {
	s, err := e.store.Get(sessionID)
	if err != nil {
		return InsightsOutput{}, e.sessionErr(sessionID, err)
	}
	if len(s.Answers) == 0 {
		return InsightsOutput{}, fmt.Errorf("%w: no answers recorded", ErrValidation)
	}

	advice, err := e.advise(ctx, s.ID, score(e.scale, s, e.weakest))
	if err != nil {
		return InsightsOutput{}, err
	}
	return InsightsOutput{Insights: advice}, nil
}

// Result returns the stored result of a finished session.
func (e *Engine) Result(_ context.Context, sessionID string) (Result, error) {
	s, err := e.store.Get(sessionID)
	if err != nil {
		return Result{}, e.sessionErr(sessionID, err)
	}
	if !s.Finished() || s.Result == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoResult, sessionID)
	}
	return *s.Result, nil
}

// Explain returns the item's written explanation, or asks the explainer
// about the learner's recorded answer when the item has none.
func (e *Engine) Explain(ctx context.Context, sessionID, itemID string) (ExplainOutput, error) {
	if sessionID == "" || itemID == "" {
		return ExplainOutput{}, fmt.Errorf("%w: sessionId and itemId are required", ErrValidation)
	}
	s, err := e.store.Get(sessionID)
	if err != nil {
		return ExplainOutput{}, e.sessionErr(sessionID, err)
	}
	it, pos, ok := s.Item(itemID)
	if !ok {
		return ExplainOutput{}, fmt.Errorf("%w: %q is not part of the session", ErrInvalidItem, itemID)
	}
	if it.Explanation != "" {
		return ExplainOutput{ItemID: it.ID, Explanation: it.Explanation}, nil
	}

	a, ok := s.Answer(itemID)
	if !ok {
		return ExplainOutput{}, fmt.Errorf("%w: %q has not been answered", ErrValidation, itemID)
	}

	start := time.Now()
	text, err := e.explainer.Explain(ctx, feedback.ExplainInput{
		SessionID: s.ID,
		Item:      it,
		Position:  pos + 1,
		Selected:  a.Selected,
	})
	e.recorder.GeneratorCalled(feedback.PurposeExplanation, time.Since(start), err)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
	return ExplainOutput{ItemID: it.ID, Explanation: text}, nil
}

// advise runs the generator outside any session lock.
func (e *Engine) advise(ctx context.Context, sessionID string, sc scored) ([]feedback.Advice, error) {
	start := time.Now()
	advice, err := e.generator.GenerateAdvice(ctx, feedback.AdviceInput{
		SessionID:     sessionID,
		ScaledReading: sc.result.ScaledReading,
		CEFR:          string(sc.result.CEFR),
		Weakest:       sc.weakest,
	})
	e.recorder.GeneratorCalled(feedback.PurposeAdvice, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
	if advice == nil {
		advice = []feedback.Advice{}
	}
	return advice, nil
}

// save stores the result on the session and exports it to telemetry.
func (e *Engine) save(ctx context.Context, s session.Session[Result], res Result, mode string) (Result, error) {
	if err := e.store.MarkFinished(s.ID, s.Revision, res); err != nil {
		if errors.Is(err, session.ErrStale) {
			e.logger.Warn("session changed during finish", zap.String("session_id", s.ID), zap.String("mode", mode))
			return Result{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return Result{}, e.sessionErr(s.ID, err)
	}

	finishedAt := e.now()
	duration := finishedAt.Sub(s.CreatedAt)

	e.recorder.SessionFinished(mode, res.CEFR)
	e.emit(ctx, telemetry.EventAssessmentFinished, s.ID, map[string]any{
		"raw":        res.RawCorrect,
		"scaled":     res.ScaledReading,
		"cefr":       string(res.CEFR),
		"durationMs": duration.Milliseconds(),
		"mode":       mode,
	})
	e.logger.Info("assessment finished",
		zap.String("session_id", s.ID),
		zap.String("mode", mode),
		zap.Int("raw", res.RawCorrect),
		zap.Int("scaled", res.ScaledReading),
		zap.String("cefr", string(res.CEFR)),
		zap.Duration("duration", duration),
	)

	payload, err := json.Marshal(res)
	if err != nil {
		e.logger.Warn("encode result", zap.String("session_id", s.ID), zap.Error(err))
		return res, nil
	}
	err = e.sink.SaveResult(context.WithoutCancel(ctx), telemetry.Result{
		SessionID:     s.ID,
		RawCorrect:    res.RawCorrect,
		ScaledReading: res.ScaledReading,
		CEFR:          string(res.CEFR),
		Payload:       payload,
		FinishedAt:    finishedAt,
	})
	if err != nil {
		e.logger.Warn("save result", zap.String("session_id", s.ID), zap.Error(err))
	}
	return res, nil
}

// emit writes a lifecycle event. Telemetry failures are logged, never
// returned.
func (e *Engine) emit(ctx context.Context, typ telemetry.EventType, sessionID string, payload map[string]any) {
	err := e.sink.AppendEvent(context.WithoutCancel(ctx), telemetry.Event{
		Type:      typ,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: e.now(),
	})
	if err != nil {
		e.logger.Warn("append event", zap.String("event", string(typ)), zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (e *Engine) sessionErr(sessionID string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return err
}
