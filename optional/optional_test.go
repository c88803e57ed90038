package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSome(t *testing.T) {
	t.Parallel()

	opt := Some(42)
	assert.True(t, opt.NonEmpty())
	assert.False(t, opt.Empty())

	val, ok := opt.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, val)
}

func TestNone(t *testing.T) {
	t.Parallel()

	opt := None[int]()
	assert.False(t, opt.NonEmpty())
	assert.True(t, opt.Empty())

	val, ok := opt.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, val)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	assert.True(t, Index(-1).Empty())
	assert.Equal(t, Some(0), Index(0))
	assert.Equal(t, Some(7), Index(7))
}

func TestGetOrPanic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, Some(3).GetOrPanic())
	assert.Panics(t, func() { None[int]().GetOrPanic() })
}

func TestGetOrElse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Some(1).GetOrElse(5))
	assert.Equal(t, 5, None[int]().GetOrElse(5))
}

func TestMap(t *testing.T) {
	t.Parallel()

	double := func(i int) int { return i * 2 }

	assert.Equal(t, Some(4), Map(Some(2), double))
	assert.True(t, Map(None[int](), double).Empty())
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Some(2)", Some(2).String())
	assert.Equal(t, "None", None[int]().String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Current  Value[int] `json:"current"`
		Previous Value[int] `json:"previous"`
	}

	out, err := json.Marshal(payload{Current: Some(2), Previous: None[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"current":2,"previous":null}`, string(out))

	var decoded payload
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, Some(2), decoded.Current)
	assert.True(t, decoded.Previous.Empty())
}

func TestYAML(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(map[string]Value[int]{"current": Some(3)})
	require.NoError(t, err)
	assert.Equal(t, "current: 3\n", string(out))

	out, err = yaml.Marshal(map[string]Value[int]{"current": None[int]()})
	require.NoError(t, err)
	assert.Equal(t, "current: null\n", string(out))
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Current  Value[int] `yaml:"current"`
		Previous Value[int] `yaml:"previous"`
		Missing  Value[int] `yaml:"missing"`
	}

	var decoded payload
	require.NoError(t, yaml.Unmarshal([]byte("current: 2\nprevious: null\n"), &decoded))
	assert.Equal(t, Some(2), decoded.Current)
	assert.True(t, decoded.Previous.Empty())
	assert.True(t, decoded.Missing.Empty())

	require.Error(t, yaml.Unmarshal([]byte("current: two\n"), &decoded))
}
