package batch

import "github.com/oddbit-project/batchcore/utils"

// Fixed engine errors, following blueprint/utils.Error's string-sentinel
// pattern.
const (
	ErrAlreadyUsed     = utils.Error("job: instance already started; jobs are single-use")
	ErrNilParameters   = utils.Error("job: parameters must not be nil")
	ErrInvalidBatch    = utils.Error("parameters: batchSize must be >= 1")
	ErrZeroThreshold   = utils.Error("parameters: errorThreshold of 0 is forbidden")
	ErrExecutorStopped = utils.Error("executor: not started")
	ErrMonitorDisabled = utils.Error("monitor: jmx not enabled for this job")
)

// Kind classifies a StageError the way spec.md §7 requires: error kinds
// are classified, not identified by concrete type.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenReader
	KindOpenWriter
	KindRead
	KindValidation
	KindProcessing
	KindWrite
	KindClose
	KindListener
	KindThreshold
)

func (k Kind) String() string {
	switch k {
	case KindOpenReader:
		return "OpenReaderError"
	case KindOpenWriter:
		return "OpenWriterError"
	case KindRead:
		return "ReadError"
	case KindValidation:
		return "ValidationError"
	case KindProcessing:
		return "ProcessingError"
	case KindWrite:
		return "WriteError"
	case KindClose:
		return "CloseError"
	case KindListener:
		return "ListenerError"
	case KindThreshold:
		return "ThresholdExceeded"
	default:
		return "UnknownError"
	}
}

// StageError is the tagged variant recommended by spec.md §9 for modeling
// stage outcomes without relying on exceptions as control flow.
type StageError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewStageError builds a classified StageError wrapping cause.
func NewStageError(kind Kind, message string, cause error) *StageError {
	return &StageError{Kind: kind, Message: message, Cause: cause}
}
