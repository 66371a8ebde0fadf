package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type orderedJobListener struct {
	BaseJobListener
	name  string
	order *[]string
}

func (l *orderedJobListener) BeforeJobStart(context.Context, *Parameters) {
	*l.order = append(*l.order, "before:"+l.name)
}

func (l *orderedJobListener) AfterJobEnd(context.Context, *Report) {
	*l.order = append(*l.order, "after:"+l.name)
}

func TestJobListenerChainOrdering(t *testing.T) {
	var order []string
	chain := jobListenerChain{chain: []JobListener{
		&orderedJobListener{name: "a", order: &order},
		&orderedJobListener{name: "b", order: &order},
	}}

	chain.beforeJobStart(context.Background(), NewParameters())
	chain.afterJobEnd(context.Background(), newReport(NewParameters()))

	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

type replacingPipelineListener struct {
	BasePipelineListener
	tag string
}

func (l *replacingPipelineListener) BeforeRecordProcessing(_ context.Context, r Record) (*Record, error) {
	r.Payload = r.Payload.(string) + l.tag
	return &r, nil
}

func TestPipelineListenerChainThreadsRecord(t *testing.T) {
	chain := pipelineListenerChain{chain: []PipelineListener{
		&replacingPipelineListener{tag: "-a"},
		&replacingPipelineListener{tag: "-b"},
	}}

	out, err := chain.beforeRecordProcessing(context.Background(), NewRecord(1, "s", "x"))
	assert.NoError(t, err)
	assert.Equal(t, "x-a-b", out.Payload)
}

type filteringPipelineListener struct{ BasePipelineListener }

func (l *filteringPipelineListener) BeforeRecordProcessing(context.Context, Record) (*Record, error) {
	return nil, nil
}

func TestPipelineListenerChainFilterShortCircuits(t *testing.T) {
	chain := pipelineListenerChain{chain: []PipelineListener{
		&filteringPipelineListener{},
		&replacingPipelineListener{tag: "-never"},
	}}

	out, err := chain.beforeRecordProcessing(context.Background(), NewRecord(1, "s", "x"))
	assert.NoError(t, err)
	assert.Nil(t, out)
}
