package hmacvalidate

import (
	"bytes"
	"context"
	"testing"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/crypt/secure"
	"github.com/oddbit-project/batchcore/provider/hmacprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) (*hmacprovider.HMACProvider, string) {
	secret, err := secure.NewCredential([]byte("top-secret-key"), secure.RandomKey32(), false)
	require.NoError(t, err)
	keyId := "writer-1"
	return hmacprovider.NewHmacProvider(hmacprovider.NewSingleKeyProvider(keyId, secret)), keyId
}

func TestValidatorAcceptsValidSignature(t *testing.T) {
	provider, keyId := newProvider(t)
	data := []byte("payload bytes")
	hash, ts, nonce, err := provider.Sign256(keyId, bytes.NewReader(data))
	require.NoError(t, err)

	rec := batch.NewRecord(1, "test", Envelope{Data: data, Hash: hash, Timestamp: ts, Nonce: nonce})

	out, err := Validator(provider).Process(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, data, out.Payload)
}

func TestValidatorRejectsTamperedData(t *testing.T) {
	provider, keyId := newProvider(t)
	data := []byte("payload bytes")
	hash, ts, nonce, err := provider.Sign256(keyId, bytes.NewReader(data))
	require.NoError(t, err)

	rec := batch.NewRecord(1, "test", Envelope{Data: []byte("tampered bytes"), Hash: hash, Timestamp: ts, Nonce: nonce})

	_, err = Validator(provider).Process(context.Background(), rec)
	require.Error(t, err)
	var stageErr *batch.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, batch.KindValidation, stageErr.Kind)
}

func TestValidatorRejectsNonEnvelopePayload(t *testing.T) {
	provider, _ := newProvider(t)
	rec := batch.NewRecord(1, "test", "not an envelope")

	_, err := Validator(provider).Process(context.Background(), rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadNotEnvelope)
}

func TestValidatorRejectsReplayedNonce(t *testing.T) {
	provider, keyId := newProvider(t)
	data := []byte("payload bytes")
	hash, ts, nonce, err := provider.Sign256(keyId, bytes.NewReader(data))
	require.NoError(t, err)

	rec := batch.NewRecord(1, "test", Envelope{Data: data, Hash: hash, Timestamp: ts, Nonce: nonce})

	_, err = Validator(provider).Process(context.Background(), rec)
	require.NoError(t, err)

	_, err = Validator(provider).Process(context.Background(), rec)
	assert.Error(t, err)
}
