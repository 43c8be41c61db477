package argz

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Pipeline.
const (
	// Metrics.
	PipelineProcessedTotal          = metricz.Key("pipeline.processed.total")
	PipelineSuccessesTotal          = metricz.Key("pipeline.successes.total")
	PipelineValidationFailuresTotal = metricz.Key("pipeline.validation.failures.total")
	PipelineParsingFailuresTotal    = metricz.Key("pipeline.parsing.failures.total")
	PipelineContractFailuresTotal   = metricz.Key("pipeline.contract.failures.total")
	PipelineStagesTotal             = metricz.Key("pipeline.stages.total")
	PipelineDurationMs              = metricz.Key("pipeline.duration.ms")

	// Spans.
	PipelineProcessSpan = tracez.Key("pipeline.process")
	PipelineStageSpan   = tracez.Key("pipeline.stage")

	// Tags.
	PipelineTagDirection  = tracez.Tag("pipeline.direction")
	PipelineTagStageCount = tracez.Tag("pipeline.stage_count")
	PipelineTagLevel      = tracez.Tag("pipeline.level")
	PipelineTagStageName  = tracez.Tag("pipeline.stage_name")
	PipelineTagStageKind  = tracez.Tag("pipeline.stage_kind")
	PipelineTagSuccess    = tracez.Tag("pipeline.success")
	PipelineTagError      = tracez.Tag("pipeline.error")

	// Hook event keys.
	PipelineEventStageComplete = hookz.Key("pipeline.stage_complete")
	PipelineEventFailed        = hookz.Key("pipeline.failed")
	PipelineEventAllComplete   = hookz.Key("pipeline.all_complete")
)

// Direction tells whether a pass processed call arguments or results.
type Direction string

// Directions.
const (
	InputDirection  Direction = "input"
	OutputDirection Direction = "output"
)

// PipelineEvent is emitted via hookz as stages complete, when a pass fails
// and when every stage of a pass succeeded.
type PipelineEvent struct {
	CallID      uuid.UUID     // Identifies one ProcessInput or ProcessOutput call
	Name        Name          // Pipeline name
	StageName   Name          // Stage name (stage events only)
	Direction   Direction     // Input or output pass
	Kind        StageKind     // Stage kind (stage events only)
	Level       int           // 1-based depth of the stage, innermost first
	TotalStages int           // Number of stages in the pass
	Position    int           // Failing argument position, -1 when not applicable
	Success     bool          // Whether the stage or pass succeeded
	Error       error         // Error if the stage or pass failed
	Duration    time.Duration // Time spent in the stage or pass
	Timestamp   time.Time     // When the event occurred
}

// Pipeline is an append-only stack of stages. Input passes run the most
// recently appended stage first, so a pipeline built by stacking attachments
// applies the innermost one closest to the call. Output passes run in
// insertion order.
//
// When a pipeline holds more than one stage, validation and parsing errors
// carry the failing stage's level: 1 for the last appended stage, up to Len()
// for the first. Single-stage pipelines leave the level unset.
//
// # Observability
//
// Metrics:
//   - pipeline.processed.total: Counter of passes
//   - pipeline.successes.total: Counter of passes without error
//   - pipeline.validation.failures.total: Counter of validation failures
//   - pipeline.parsing.failures.total: Counter of parsing failures
//   - pipeline.contract.failures.total: Counter of API misuse
//   - pipeline.stages.total: Gauge of stages in the last pass
//   - pipeline.duration.ms: Gauge of the last pass duration
//
// Traces:
//   - pipeline.process: Parent span for a pass
//   - pipeline.stage: Child span per stage
//
// Events (via hooks):
//   - pipeline.stage_complete: Fired as each stage finishes
//   - pipeline.failed: Fired when a pass fails
//   - pipeline.all_complete: Fired when every stage of a pass succeeded
//
// Example:
//
//	p := argz.NewPipeline("transfer")
//	_ = p.Parse(argz.ToInt(), argz.ToInt())
//	_ = p.Validate(argz.Type[int](), argz.Range(1, 100))
//	args, err := p.ProcessInput(ctx, []any{7, 12})
type Pipeline struct {
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PipelineEvent]
	name    Name
	stages  []Stage
	mu      sync.RWMutex
}

// NewPipeline creates an empty pipeline.
func NewPipeline(name Name) *Pipeline {
	metrics := metricz.New()
	metrics.Counter(PipelineProcessedTotal)
	metrics.Counter(PipelineSuccessesTotal)
	metrics.Counter(PipelineValidationFailuresTotal)
	metrics.Counter(PipelineParsingFailuresTotal)
	metrics.Counter(PipelineContractFailuresTotal)
	metrics.Gauge(PipelineStagesTotal)
	metrics.Gauge(PipelineDurationMs)

	return &Pipeline{
		name:    name,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[PipelineEvent](),
	}
}

// Append adds a stage on top of the stack. A nil stage is a contract violation.
func (p *Pipeline) Append(stage Stage) error {
	if isNilStage(stage) {
		return &ContractError{Op: "append", Err: ErrNilStage}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stage)
	return nil
}

func isNilStage(stage Stage) bool {
	if stage == nil {
		return true
	}
	rv := reflect.ValueOf(stage)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// Validate resolves specs and appends a validating stage of arity len(specs).
func (p *Pipeline) Validate(specs ...Spec) error {
	preds, err := ResolveAll(specs...)
	if err != nil {
		return err
	}
	return p.Append(NewValidateStage(preds...))
}

// Parse appends a parsing stage of arity len(parsers).
func (p *Pipeline) Parse(parsers ...Parser) error {
	return p.Append(NewParseStage(parsers...))
}

// ProcessInput runs args through every stage, most recently appended first,
// and returns the processed values with Input wrappers removed.
func (p *Pipeline) ProcessInput(ctx context.Context, args []any) ([]any, error) {
	out, err := p.run(ctx, InputDirection, args)
	if err != nil {
		return nil, err
	}
	return Unwrap(out), nil
}

// ProcessOutput runs outputs through every stage's output items in insertion
// order.
func (p *Pipeline) ProcessOutput(ctx context.Context, outputs []any) ([]any, error) {
	out, err := p.run(ctx, OutputDirection, outputs)
	if err != nil {
		return nil, err
	}
	return Unwrap(out), nil
}

func (p *Pipeline) run(ctx context.Context, dir Direction, values []any) (result []any, err error) {
	p.mu.RLock()
	stages := slices.Clone(p.stages)
	clock := p.getClock()
	p.mu.RUnlock()

	if ctx == nil {
		ctx = context.Background()
	}

	callID := uuid.New()
	total := len(stages)
	p.metrics.Counter(PipelineProcessedTotal).Inc()
	p.metrics.Gauge(PipelineStagesTotal).Set(float64(total))
	start := clock.Now()

	ctx, span := p.tracer.StartSpan(ctx, PipelineProcessSpan)
	span.SetTag(PipelineTagDirection, string(dir))
	span.SetTag(PipelineTagStageCount, fmt.Sprintf("%d", total))
	defer func() {
		elapsed := clock.Since(start)
		p.metrics.Gauge(PipelineDurationMs).Set(float64(elapsed.Milliseconds()))
		if err == nil {
			span.SetTag(PipelineTagSuccess, "true")
			p.metrics.Counter(PipelineSuccessesTotal).Inc()
		} else {
			span.SetTag(PipelineTagSuccess, "false")
			span.SetTag(PipelineTagError, err.Error())
			p.countFailure(err)
			_ = p.hooks.Emit(ctx, PipelineEventFailed, PipelineEvent{ //nolint:errcheck
				CallID:      callID,
				Name:        p.name,
				Direction:   dir,
				TotalStages: total,
				Position:    failedPosition(err),
				Success:     false,
				Error:       err,
				Duration:    elapsed,
				Timestamp:   clock.Now(),
			})
		}
		span.Finish()
	}()

	result = slices.Clone(values)
	for n := 0; n < total; n++ {
		idx := total - 1 - n
		if dir == OutputDirection {
			idx = n
		}
		stage := stages[idx]
		level := total - idx

		stageCtx, stageSpan := p.tracer.StartSpan(ctx, PipelineStageSpan)
		stageSpan.SetTag(PipelineTagLevel, fmt.Sprintf("%d", level))
		stageSpan.SetTag(PipelineTagStageName, stage.Name())
		stageSpan.SetTag(PipelineTagStageKind, string(stage.Kind()))

		stageStart := clock.Now()
		var next []any
		var stageErr error
		if dir == InputDirection {
			next, stageErr = callStage(stage.ProcessInput, result)
		} else {
			next, stageErr = callStage(stage.ProcessOutput, result)
		}
		stageDuration := clock.Since(stageStart)
		if stageErr != nil {
			stageSpan.SetTag(PipelineTagError, stageErr.Error())
		}
		stageSpan.Finish()

		if stageErr != nil {
			stageErr = annotate(stageErr, level, total, clock.Now())
		}
		_ = p.hooks.Emit(stageCtx, PipelineEventStageComplete, PipelineEvent{ //nolint:errcheck
			CallID:      callID,
			Name:        p.name,
			StageName:   stage.Name(),
			Direction:   dir,
			Kind:        stage.Kind(),
			Level:       level,
			TotalStages: total,
			Position:    failedPosition(stageErr),
			Success:     stageErr == nil,
			Error:       stageErr,
			Duration:    stageDuration,
			Timestamp:   clock.Now(),
		})
		if stageErr != nil {
			return nil, stageErr
		}
		result = next
	}

	_ = p.hooks.Emit(ctx, PipelineEventAllComplete, PipelineEvent{ //nolint:errcheck
		CallID:      callID,
		Name:        p.name,
		Direction:   dir,
		TotalStages: total,
		Position:    -1,
		Success:     true,
		Duration:    clock.Since(start),
		Timestamp:   clock.Now(),
	})
	return result, nil
}

// callStage converts a panicking stage into a contract error.
func callStage(fn func([]any) ([]any, error), values []any) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &ContractError{Op: "stage", Err: &panicError{value: r}}
		}
	}()
	return fn(values)
}

// annotate stamps validation and parsing errors with the time and, in
// multi-stage pipelines, the level. Other errors pass through unchanged.
func annotate(err error, level, total int, now time.Time) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Timestamp = now
		if total > 1 {
			ve.Level = level
		}
		return err
	}
	var pe *ParsingError
	if errors.As(err, &pe) {
		pe.Timestamp = now
		if total > 1 {
			pe.Level = level
		}
	}
	return err
}

func failedPosition(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Position
	}
	var pe *ParsingError
	if errors.As(err, &pe) {
		return pe.Position
	}
	return -1
}

func (p *Pipeline) countFailure(err error) {
	switch {
	case IsValidation(err):
		p.metrics.Counter(PipelineValidationFailuresTotal).Inc()
	case IsParsing(err):
		p.metrics.Counter(PipelineParsingFailuresTotal).Inc()
	case IsContract(err):
		p.metrics.Counter(PipelineContractFailuresTotal).Inc()
	}
}

// Stages returns the stages in insertion order.
func (p *Pipeline) Stages() []Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.stages)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stages)
}

// Name returns the name of this pipeline.
func (p *Pipeline) Name() Name {
	return p.name
}

// WithClock sets a custom clock for testing.
func (p *Pipeline) WithClock(clock clockz.Clock) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

func (p *Pipeline) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pipeline.
func (p *Pipeline) Tracer() *tracez.Tracer {
	return p.tracer
}

// Close gracefully shuts down observability components.
func (p *Pipeline) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

// OnStageComplete registers a handler called asynchronously each time a
// stage finishes, whether it succeeds or fails.
func (p *Pipeline) OnStageComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventStageComplete, handler)
	return err
}

// OnFailed registers a handler called asynchronously when a pass fails.
func (p *Pipeline) OnFailed(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventFailed, handler)
	return err
}

// OnAllComplete registers a handler called asynchronously when every stage of
// a pass succeeded.
func (p *Pipeline) OnAllComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventAllComplete, handler)
	return err
}
