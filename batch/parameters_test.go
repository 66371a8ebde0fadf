package batch

import (
	"testing"

	"github.com/oddbit-project/batchcore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfigNode is a minimal in-memory config.ConfigInterface for testing
// ParametersFromConfig without pulling in a real json/env provider.
type fakeConfigNode struct {
	values map[string]interface{}
}

func newFakeConfigNode(values map[string]interface{}) *fakeConfigNode {
	return &fakeConfigNode{values: values}
}

func (c *fakeConfigNode) KeyExists(key string) bool {
	_, ok := c.values[key]
	return ok
}

func (c *fakeConfigNode) KeyListExists(keys []string) bool {
	for _, k := range keys {
		if !c.KeyExists(k) {
			return false
		}
	}
	return true
}

func (c *fakeConfigNode) GetKey(key string, dest interface{}) error {
	return config.ErrNotImplemented
}

func (c *fakeConfigNode) GetStringKey(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", config.ErrNoKey
	}
	s, ok := v.(string)
	if !ok {
		return "", config.ErrInvalidType
	}
	return s, nil
}

func (c *fakeConfigNode) GetBoolKey(key string) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, config.ErrNoKey
	}
	b, ok := v.(bool)
	if !ok {
		return false, config.ErrInvalidType
	}
	return b, nil
}

func (c *fakeConfigNode) GetIntKey(key string) (int, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, config.ErrNoKey
	}
	n, ok := v.(int)
	if !ok {
		return 0, config.ErrInvalidType
	}
	return n, nil
}

func (c *fakeConfigNode) GetFloat64Key(key string) (float64, error) {
	return 0, config.ErrNotImplemented
}

func (c *fakeConfigNode) GetSliceKey(key, separator string) ([]string, error) {
	return nil, config.ErrNotImplemented
}

func (c *fakeConfigNode) GetConfigNode(key string) (config.ConfigProvider, error) {
	return nil, config.ErrNotImplemented
}

func TestNewParametersDefaults(t *testing.T) {
	p := NewParameters()
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, DefaultBatchSize, p.BatchSize)
	assert.EqualValues(t, DefaultErrorThreshold, p.ErrorThreshold)
	assert.False(t, p.JmxEnabled)
	assert.NoError(t, p.Validate())
}

func TestParametersValidateRejectsBadBatchSize(t *testing.T) {
	p := NewParameters()
	p.BatchSize = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidBatch)
}

func TestParametersValidateRejectsZeroThreshold(t *testing.T) {
	p := NewParameters()
	p.ErrorThreshold = 0
	assert.ErrorIs(t, p.Validate(), ErrZeroThreshold)
}

func TestParametersFromConfigOverridesDefaults(t *testing.T) {
	node := newFakeConfigNode(map[string]interface{}{
		"name":           "nightly-import",
		"batchSize":      50,
		"errorThreshold": 10,
		"timeoutSeconds": 30,
		"jmxEnabled":     true,
	})

	p, err := ParametersFromConfig(node)
	require.NoError(t, err)
	assert.Equal(t, "nightly-import", p.Name)
	assert.Equal(t, 50, p.BatchSize)
	assert.EqualValues(t, 10, p.ErrorThreshold)
	assert.Equal(t, int64(30), int64(p.Timeout.Seconds()))
	assert.True(t, p.JmxEnabled)
}

func TestParametersFromConfigLeavesUnsetKeysAtDefault(t *testing.T) {
	node := newFakeConfigNode(map[string]interface{}{})

	p, err := ParametersFromConfig(node)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, DefaultBatchSize, p.BatchSize)
}

func TestParametersFromConfigRejectsInvalidBatchSize(t *testing.T) {
	node := newFakeConfigNode(map[string]interface{}{"batchSize": 0})

	_, err := ParametersFromConfig(node)
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestParametersFromConfigPropagatesTypeError(t *testing.T) {
	node := newFakeConfigNode(map[string]interface{}{"batchSize": "not-a-number"})

	_, err := ParametersFromConfig(node)
	assert.ErrorIs(t, err, config.ErrInvalidType)
}
