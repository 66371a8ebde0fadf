package batch

import "context"

// Stage is the function shape shared by RecordFilter, RecordValidator
// and RecordProcessor (spec.md §4.2): Record -> Record|null, may fail.
// A nil *Record return means "drop" (filtered, not an error).
type Stage interface {
	Process(ctx context.Context, r Record) (*Record, error)
}

// StageFunc adapts a plain function to a Stage.
type StageFunc func(ctx context.Context, r Record) (*Record, error)

func (f StageFunc) Process(ctx context.Context, r Record) (*Record, error) {
	return f(ctx, r)
}

// Filter wraps a predicate as a RecordFilter stage: true keeps the
// record, false filters it. A filter never fails.
func Filter(keep func(r Record) bool) Stage {
	return StageFunc(func(_ context.Context, r Record) (*Record, error) {
		if keep(r) {
			return &r, nil
		}
		return nil, nil
	})
}

// Validator wraps a check function as a RecordValidator stage: a non-nil
// error becomes a ValidationError outcome, never a filter.
func Validator(check func(r Record) error) Stage {
	return StageFunc(func(_ context.Context, r Record) (*Record, error) {
		if err := check(r); err != nil {
			return nil, NewStageError(KindValidation, "record failed validation", err)
		}
		return &r, nil
	})
}

// Outcome classifies the result of running a Record through the
// Pipeline (spec.md §4.2): exactly one of OUTPUT, FILTERED, or ERROR.
type Outcome int

const (
	OutcomeOutput Outcome = iota
	OutcomeFiltered
	OutcomeError
)

// Result is the single outcome a Pipeline produces per input record.
type Result struct {
	Outcome Outcome
	Record  Record // valid when Outcome == OutcomeOutput
	Input   Record // the original input, valid when Outcome == OutcomeError
	Err     error  // valid when Outcome == OutcomeError
}

// Pipeline is the ordered chain of stages of spec.md §4.2. Stages apply
// in registration order; a nil return short-circuits as FILTERED, a
// failing stage short-circuits as ERROR carrying the original input.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns an empty pipeline (the default a fresh Builder
// produces, per spec.md §6).
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Append adds a stage to the end of the chain.
func (p *Pipeline) Append(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Len returns the number of registered stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Run applies every stage in order to input, producing exactly one Result.
func (p *Pipeline) Run(ctx context.Context, input Record) Result {
	current := input
	for _, stage := range p.stages {
		out, err := runStage(stage, ctx, current)
		if err != nil {
			return Result{Outcome: OutcomeError, Input: input, Err: err}
		}
		if out == nil {
			return Result{Outcome: OutcomeFiltered, Input: input}
		}
		current = *out
	}
	return Result{Outcome: OutcomeOutput, Record: current}
}

// runStage calls the stage directly; the Job runner is the only place
// that needs to additionally catch a panicking third-party stage (spec.md
// §9 "only the outermost runner catches unexpected panics"), so Pipeline
// itself stays a plain function call.
func runStage(s Stage, ctx context.Context, r Record) (out *Record, err error) {
	return s.Process(ctx, r)
}
