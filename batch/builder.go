package batch

import (
	"time"

	"github.com/oddbit-project/batchcore/log"
)

// Builder is the chainable construction contract of spec.md §6. Build()
// yields a Job with default components: a no-op reader that reports
// end-of-stream immediately, a no-op writer, an empty pipeline, and
// empty listener chains.
type Builder struct {
	params *Parameters
	reader RecordReader
	writer RecordWriter
	pipe   *Pipeline
	logger *log.Logger

	jobListeners    []JobListener
	batchListeners  []BatchListener
	readerListeners []RecordReaderListener
	pipeListeners   []PipelineListener
	writerListeners []RecordWriterListener
}

// NewBuilder returns a Builder seeded with default Parameters and
// default (no-op) components.
func NewBuilder() *Builder {
	return &Builder{
		params: NewParameters(),
		reader: noopReader{},
		writer: noopWriter{},
		pipe:   NewPipeline(),
	}
}

func (b *Builder) Name(name string) *Builder {
	b.params.Name = name
	return b
}

func (b *Builder) BatchSize(n int) *Builder {
	b.params.BatchSize = n
	return b
}

func (b *Builder) ErrorThreshold(n int64) *Builder {
	b.params.ErrorThreshold = n
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder {
	b.params.Timeout = d
	return b
}

func (b *Builder) Jmx(enabled bool) *Builder {
	b.params.JmxEnabled = enabled
	return b
}

func (b *Builder) WithParameters(p *Parameters) *Builder {
	b.params = p
	return b
}

func (b *Builder) Reader(r RecordReader) *Builder {
	b.reader = r
	return b
}

func (b *Builder) Writer(w RecordWriter) *Builder {
	b.writer = w
	return b
}

func (b *Builder) Processor(s Stage) *Builder {
	b.pipe.Append(s)
	return b
}

func (b *Builder) Filter(keep func(r Record) bool) *Builder {
	b.pipe.Append(Filter(keep))
	return b
}

func (b *Builder) Validator(check func(r Record) error) *Builder {
	b.pipe.Append(Validator(check))
	return b
}

func (b *Builder) JobListener(l JobListener) *Builder {
	b.jobListeners = append(b.jobListeners, l)
	return b
}

func (b *Builder) BatchListener(l BatchListener) *Builder {
	b.batchListeners = append(b.batchListeners, l)
	return b
}

func (b *Builder) ReaderListener(l RecordReaderListener) *Builder {
	b.readerListeners = append(b.readerListeners, l)
	return b
}

func (b *Builder) WriterListener(l RecordWriterListener) *Builder {
	b.writerListeners = append(b.writerListeners, l)
	return b
}

func (b *Builder) PipelineListener(l PipelineListener) *Builder {
	b.pipeListeners = append(b.pipeListeners, l)
	return b
}

func (b *Builder) Logger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the accumulated Parameters and returns a ready-to-run Job.
func (b *Builder) Build() (*Job, error) {
	if b.params == nil {
		return nil, ErrNilParameters
	}
	if err := b.params.Validate(); err != nil {
		return nil, err
	}

	j := &Job{
		params: b.params,
		report: newReport(b.params),
		reader: b.reader,
		writer: b.writer,
		pipe:   b.pipe,
		logger: b.logger,

		jobListeners:     jobListenerChain{chain: b.jobListeners},
		batchListeners:   batchListenerChain{chain: b.batchListeners},
		readerListeners:  readerListenerChain{chain: b.readerListeners},
		pipelineListener: pipelineListenerChain{chain: b.pipeListeners},
		writerListeners:  writerListenerChain{chain: b.writerListeners},
	}

	if b.params.JmxEnabled {
		j.monitorStop = DefaultRegistry.register(j)
	}

	return j, nil
}
