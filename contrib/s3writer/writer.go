// Package s3writer adapts an S3 (or compatible) bucket into a
// batch.RecordWriter: each flushed batch is uploaded as a single
// newline-delimited-JSON object, grounded on
// blueprint/provider/s3.Bucket.PutObject.
package s3writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/log"
	"github.com/oddbit-project/batchcore/provider/s3"
)

// ObjectNameFunc names the object a flushed batch is uploaded as. The
// default names objects by upload time with nanosecond precision.
type ObjectNameFunc func(batchIndex int) string

// Writer uploads every flushed batch as one object under prefix.
type Writer struct {
	config     *s3.Config
	logger     *log.Logger
	bucketName string
	prefix     string
	nameFunc   ObjectNameFunc

	client *s3.Client
	bucket *s3.Bucket
	count  int
}

func defaultObjectName(batchIndex int) string {
	return fmt.Sprintf("batch-%d-%d.ndjson", time.Now().UnixNano(), batchIndex)
}

// NewWriter builds a Writer targeting bucketName, prefixing every
// uploaded object's key with prefix. A nil nameFunc uses a
// timestamp+index name.
func NewWriter(cfg *s3.Config, logger *log.Logger, bucketName, prefix string, nameFunc ObjectNameFunc) *Writer {
	if nameFunc == nil {
		nameFunc = defaultObjectName
	}
	return &Writer{config: cfg, logger: logger, bucketName: bucketName, prefix: prefix, nameFunc: nameFunc}
}

func (w *Writer) Open(ctx context.Context) error {
	client, err := s3.NewClient(w.config, w.logger)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	bucket, err := client.Bucket(w.bucketName)
	if err != nil {
		return err
	}
	w.client = client
	w.bucket = bucket
	return nil
}

func (w *Writer) WriteRecords(ctx context.Context, records []batch.Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r.Payload); err != nil {
			return fmt.Errorf("s3writer: encode record %d: %w", r.Header.SequenceNumber, err)
		}
	}

	objectName := w.prefix + w.nameFunc(w.count)
	w.count++

	if err := w.bucket.PutObject(ctx, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		return fmt.Errorf("s3writer: put object %q: %w", objectName, err)
	}
	return nil
}

func (w *Writer) Close(context.Context) error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}
