// Package mqttreader adapts an MQTT topic into a batch.RecordReader,
// grounded on blueprint/provider/mqtt.Client.ChannelSubscribe.
package mqttreader

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/mqtt"
)

// Reader subscribes to an MQTT topic and funnels incoming messages
// through a buffered channel. A read that receives nothing within
// idleTimeout ends the run, treating a quiet topic as end-of-stream.
type Reader struct {
	config      *mqtt.Config
	topic       string
	qos         byte
	idleTimeout time.Duration

	client *mqtt.Client
	ch     chan paho.Message
	seq    uint64
}

// NewReader builds a Reader. idleTimeout bounds how long ReadRecord waits
// for the next message before reporting end-of-stream; zero defaults to
// 5 seconds.
func NewReader(cfg *mqtt.Config, topic string, qos byte, idleTimeout time.Duration) *Reader {
	if idleTimeout <= 0 {
		idleTimeout = 5 * time.Second
	}
	return &Reader{config: cfg, topic: topic, qos: qos, idleTimeout: idleTimeout}
}

func (r *Reader) Open(context.Context) error {
	client, err := mqtt.NewClient(r.config)
	if err != nil {
		return err
	}
	if _, err := client.Connect(); err != nil {
		return err
	}

	ch := make(chan paho.Message, 64)
	if err := client.ChannelSubscribe(r.topic, r.qos, ch); err != nil {
		_ = client.Close()
		return err
	}

	r.client = client
	r.ch = ch
	return nil
}

func (r *Reader) ReadRecord(ctx context.Context) (batch.Record, bool, error) {
	select {
	case msg, ok := <-r.ch:
		if !ok {
			return batch.Record{}, false, nil
		}
		r.seq++
		return batch.NewRecord(r.seq, msg.Topic(), msg.Payload()), true, nil
	case <-time.After(r.idleTimeout):
		return batch.Record{}, false, nil
	case <-ctx.Done():
		return batch.Record{}, false, ctx.Err()
	}
}

func (r *Reader) Close(context.Context) error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
