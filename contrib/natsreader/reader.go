// Package natsreader adapts a NATS subject into a batch.RecordReader,
// grounded on blueprint/provider/nats.Consumer's SubscribeSync/NextMsg pair.
package natsreader

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/log"
	natsprovider "github.com/oddbit-project/batchcore/provider/nats"
)

// Reader pulls messages off a synchronous NATS subscription. A poll that
// times out waiting for the next message is treated as end-of-stream,
// matching a bounded drain of whatever is currently queued on the subject.
type Reader struct {
	config      *natsprovider.ConsumerConfig
	logger      *log.Logger
	pollTimeout time.Duration

	consumer *natsprovider.Consumer
	sub      *nats.Subscription
	seq      uint64
}

// NewReader builds a Reader. pollTimeout bounds how long NextMsg waits
// before the Reader reports end-of-stream; zero defaults to 5 seconds.
func NewReader(cfg *natsprovider.ConsumerConfig, logger *log.Logger, pollTimeout time.Duration) *Reader {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &Reader{config: cfg, logger: logger, pollTimeout: pollTimeout}
}

func (r *Reader) Open(context.Context) error {
	consumer, err := natsprovider.NewConsumer(r.config, r.logger)
	if err != nil {
		return err
	}
	sub, err := consumer.SubscribeSync()
	if err != nil {
		consumer.Disconnect()
		return err
	}
	r.consumer = consumer
	r.sub = sub
	return nil
}

func (r *Reader) ReadRecord(context.Context) (batch.Record, bool, error) {
	msg, err := r.consumer.NextMsg(r.sub, r.pollTimeout)
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) {
			return batch.Record{}, false, nil
		}
		return batch.Record{}, false, err
	}

	r.seq++
	return batch.NewRecord(r.seq, msg.Subject, msg.Data), true, nil
}

func (r *Reader) Close(context.Context) error {
	if r.consumer == nil {
		return nil
	}
	if r.sub != nil {
		_ = r.consumer.Unsubscribe(r.sub)
	}
	r.consumer.Disconnect()
	return nil
}
