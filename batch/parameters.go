package batch

import (
	"math"
	"time"

	"github.com/oddbit-project/batchcore/config"
)

const (
	DefaultName           = "job"
	DefaultBatchSize      = 100
	DefaultErrorThreshold = math.MaxInt64
)

// Parameters is the per-job configuration described in spec.md §3.
// Immutable once built.
type Parameters struct {
	Name           string
	BatchSize      int
	ErrorThreshold int64
	Timeout        time.Duration // zero means "none"
	JmxEnabled     bool
}

// NewParameters returns the default parameters: name "job", batch size
// 100, unbounded error threshold, no timeout, jmx disabled.
func NewParameters() *Parameters {
	return &Parameters{
		Name:           DefaultName,
		BatchSize:      DefaultBatchSize,
		ErrorThreshold: DefaultErrorThreshold,
		Timeout:        0,
		JmxEnabled:     false,
	}
}

// Validate enforces spec.md §3's invariants: batchSize >= 1, threshold != 0.
func (p *Parameters) Validate() error {
	if p.BatchSize < 1 {
		return ErrInvalidBatch
	}
	if p.ErrorThreshold == 0 {
		return ErrZeroThreshold
	}
	return nil
}

// ParametersFromConfig builds Parameters from a blueprint-style
// config.ConfigInterface node, additive to the chainable builder path
// (spec.md §6 stays the primary, config-free contract).
func ParametersFromConfig(node config.ConfigInterface) (*Parameters, error) {
	p := NewParameters()

	if node.KeyExists("name") {
		v, err := node.GetStringKey("name")
		if err != nil {
			return nil, err
		}
		p.Name = v
	}
	if node.KeyExists("batchSize") {
		v, err := node.GetIntKey("batchSize")
		if err != nil {
			return nil, err
		}
		p.BatchSize = v
	}
	if node.KeyExists("errorThreshold") {
		v, err := node.GetIntKey("errorThreshold")
		if err != nil {
			return nil, err
		}
		p.ErrorThreshold = int64(v)
	}
	if node.KeyExists("timeoutSeconds") {
		v, err := node.GetIntKey("timeoutSeconds")
		if err != nil {
			return nil, err
		}
		p.Timeout = time.Duration(v) * time.Second
	}
	if node.KeyExists("jmxEnabled") {
		v, err := node.GetBoolKey("jmxEnabled")
		if err != nil {
			return nil, err
		}
		p.JmxEnabled = v
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
