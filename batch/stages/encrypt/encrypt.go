// Package encrypt wraps a record's payload with AES-256-GCM, grounded on
// blueprint/crypt/secure.AES256GCM. Payloads must already be []byte;
// pair this stage after a serialization stage that produces one.
package encrypt

import (
	"context"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/crypt/secure"
	"github.com/oddbit-project/batchcore/utils"
)

const ErrPayloadNotBytes = utils.Error("encrypt: payload must be []byte")

// Encryptor returns a batch.Stage that replaces each record's []byte
// payload with its AES-256-GCM ciphertext.
func Encryptor(cipher secure.AES256GCM) batch.Stage {
	return batch.StageFunc(func(_ context.Context, r batch.Record) (*batch.Record, error) {
		data, ok := r.Payload.([]byte)
		if !ok {
			return nil, batch.NewStageError(batch.KindProcessing, "encrypt stage", ErrPayloadNotBytes)
		}
		ciphertext, err := cipher.Encrypt(data)
		if err != nil {
			return nil, batch.NewStageError(batch.KindProcessing, "encrypt record", err)
		}
		out := r.WithPayload(ciphertext)
		return &out, nil
	})
}

// Decryptor returns a batch.Stage that replaces each record's []byte
// payload with its AES-256-GCM plaintext.
func Decryptor(cipher secure.AES256GCM) batch.Stage {
	return batch.StageFunc(func(_ context.Context, r batch.Record) (*batch.Record, error) {
		data, ok := r.Payload.([]byte)
		if !ok {
			return nil, batch.NewStageError(batch.KindProcessing, "decrypt stage", ErrPayloadNotBytes)
		}
		plaintext, err := cipher.Decrypt(data)
		if err != nil {
			return nil, batch.NewStageError(batch.KindProcessing, "decrypt record", err)
		}
		out := r.WithPayload(plaintext)
		return &out, nil
	})
}
