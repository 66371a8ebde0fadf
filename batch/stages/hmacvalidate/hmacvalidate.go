// Package hmacvalidate checks a signed envelope against an HMAC-SHA256
// signature before letting a record continue through the pipeline,
// grounded on blueprint/provider/hmacprovider.HMACProvider.Verify256.
package hmacvalidate

import (
	"bytes"
	"context"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/hmacprovider"
	"github.com/oddbit-project/batchcore/utils"
)

const ErrPayloadNotEnvelope = utils.Error("hmacvalidate: payload must be an Envelope")

// Envelope is the payload shape this stage expects: the signed data
// plus the signature material produced by HMACProvider.Sign256.
type Envelope struct {
	Data      []byte
	Hash      string
	Timestamp string
	Nonce     string
}

// Validator returns a batch.Stage that verifies each record's Envelope
// payload with provider. A failed or expired signature is reported as a
// validation error (spec.md §4.2), never silently filtered.
func Validator(provider *hmacprovider.HMACProvider) batch.Stage {
	return batch.StageFunc(func(_ context.Context, r batch.Record) (*batch.Record, error) {
		env, ok := r.Payload.(Envelope)
		if !ok {
			return nil, batch.NewStageError(batch.KindValidation, "hmac validation", ErrPayloadNotEnvelope)
		}
		_, valid, err := provider.Verify256(bytes.NewReader(env.Data), env.Hash, env.Timestamp, env.Nonce)
		if err != nil {
			return nil, batch.NewStageError(batch.KindValidation, "hmac signature rejected", err)
		}
		if !valid {
			return nil, batch.NewStageError(batch.KindValidation, "hmac signature mismatch", nil)
		}
		out := r.WithPayload(env.Data)
		return &out, nil
	})
}
