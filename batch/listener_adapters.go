package batch

import "context"

// BaseJobListener, BaseBatchListener, etc. are no-op embeddable base
// types so a listener only has to override the hooks it cares about,
// matching the optional-hook ergonomics blueprint providers get from
// functional options.

type BaseJobListener struct{}

func (BaseJobListener) BeforeJobStart(context.Context, *Parameters) {}
func (BaseJobListener) AfterJobEnd(context.Context, *Report)        {}

type BaseBatchListener struct{}

func (BaseBatchListener) BeforeBatchReading(context.Context)                        {}
func (BaseBatchListener) AfterBatchProcessing(context.Context, []Record)            {}
func (BaseBatchListener) AfterBatchWriting(context.Context, []Record)               {}
func (BaseBatchListener) OnBatchWritingException(context.Context, []Record, error) {}

type BaseRecordReaderListener struct{}

func (BaseRecordReaderListener) BeforeRecordReading(context.Context)         {}
func (BaseRecordReaderListener) AfterRecordReading(context.Context, Record)  {}
func (BaseRecordReaderListener) OnRecordReadingException(context.Context, error) {}

type BasePipelineListener struct{}

func (BasePipelineListener) BeforeRecordProcessing(_ context.Context, r Record) (*Record, error) {
	return &r, nil
}
func (BasePipelineListener) AfterRecordProcessing(context.Context, Record, Record)       {}
func (BasePipelineListener) OnRecordProcessingException(context.Context, Record, error) {}

type BaseRecordWriterListener struct{}

func (BaseRecordWriterListener) BeforeRecordWriting(context.Context, []Record)        {}
func (BaseRecordWriterListener) AfterRecordWriting(context.Context, []Record)         {}
func (BaseRecordWriterListener) OnRecordWritingException(context.Context, []Record, error) {}
