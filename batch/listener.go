package batch

import "context"

// The five listener capability interfaces of spec.md §4.5. Each kind
// composes as an ordered chain; before-hooks run forward, after-hooks run
// in reverse, matching a classic middleware composition.

type JobListener interface {
	BeforeJobStart(ctx context.Context, params *Parameters)
	AfterJobEnd(ctx context.Context, report *Report)
}

type BatchListener interface {
	BeforeBatchReading(ctx context.Context)
	AfterBatchProcessing(ctx context.Context, records []Record)
	AfterBatchWriting(ctx context.Context, records []Record)
	OnBatchWritingException(ctx context.Context, records []Record, err error)
}

type RecordReaderListener interface {
	BeforeRecordReading(ctx context.Context)
	AfterRecordReading(ctx context.Context, r Record)
	OnRecordReadingException(ctx context.Context, err error)
}

// PipelineListener's BeforeRecordProcessing may replace or filter the
// record: a nil return filters it, matching a pipeline stage.
type PipelineListener interface {
	BeforeRecordProcessing(ctx context.Context, r Record) (*Record, error)
	AfterRecordProcessing(ctx context.Context, input, output Record)
	OnRecordProcessingException(ctx context.Context, input Record, err error)
}

type RecordWriterListener interface {
	BeforeRecordWriting(ctx context.Context, records []Record)
	AfterRecordWriting(ctx context.Context, records []Record)
	OnRecordWritingException(ctx context.Context, records []Record, err error)
}

// --- chains ---------------------------------------------------------

type jobListenerChain struct{ chain []JobListener }

func (c *jobListenerChain) beforeJobStart(ctx context.Context, p *Parameters) {
	for _, l := range c.chain {
		l.BeforeJobStart(ctx, p)
	}
}

func (c *jobListenerChain) afterJobEnd(ctx context.Context, r *Report) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterJobEnd(ctx, r)
	}
}

type batchListenerChain struct{ chain []BatchListener }

func (c *batchListenerChain) beforeBatchReading(ctx context.Context) {
	for _, l := range c.chain {
		l.BeforeBatchReading(ctx)
	}
}

func (c *batchListenerChain) afterBatchProcessing(ctx context.Context, records []Record) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterBatchProcessing(ctx, records)
	}
}

func (c *batchListenerChain) afterBatchWriting(ctx context.Context, records []Record) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterBatchWriting(ctx, records)
	}
}

func (c *batchListenerChain) onBatchWritingException(ctx context.Context, records []Record, err error) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].OnBatchWritingException(ctx, records, err)
	}
}

type readerListenerChain struct{ chain []RecordReaderListener }

func (c *readerListenerChain) beforeRecordReading(ctx context.Context) {
	for _, l := range c.chain {
		l.BeforeRecordReading(ctx)
	}
}

func (c *readerListenerChain) afterRecordReading(ctx context.Context, r Record) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterRecordReading(ctx, r)
	}
}

func (c *readerListenerChain) onRecordReadingException(ctx context.Context, err error) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].OnRecordReadingException(ctx, err)
	}
}

type pipelineListenerChain struct{ chain []PipelineListener }

// beforeRecordProcessing forwards the (possibly replaced) record through
// every listener in order. A nil return or error short-circuits.
func (c *pipelineListenerChain) beforeRecordProcessing(ctx context.Context, r Record) (*Record, error) {
	current := r
	for _, l := range c.chain {
		out, err := l.BeforeRecordProcessing(ctx, current)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, nil
		}
		current = *out
	}
	return &current, nil
}

func (c *pipelineListenerChain) afterRecordProcessing(ctx context.Context, input, output Record) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterRecordProcessing(ctx, input, output)
	}
}

func (c *pipelineListenerChain) onRecordProcessingException(ctx context.Context, input Record, err error) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].OnRecordProcessingException(ctx, input, err)
	}
}

type writerListenerChain struct{ chain []RecordWriterListener }

func (c *writerListenerChain) beforeRecordWriting(ctx context.Context, records []Record) {
	for _, l := range c.chain {
		l.BeforeRecordWriting(ctx, records)
	}
}

func (c *writerListenerChain) afterRecordWriting(ctx context.Context, records []Record) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].AfterRecordWriting(ctx, records)
	}
}

func (c *writerListenerChain) onRecordWritingException(ctx context.Context, records []Record, err error) {
	for i := len(c.chain) - 1; i >= 0; i-- {
		c.chain[i].OnRecordWritingException(ctx, records, err)
	}
}
