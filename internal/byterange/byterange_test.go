package byterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsentHeader(t *testing.T) {
	r, err := Evaluate("", 1000)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = Evaluate("   ", 1000)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestClosedRange(t *testing.T) {
	r, err := Evaluate("bytes=100-200", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, int64(100), r.Start)
	assert.Equal(t, int64(200), r.End)
	assert.Equal(t, int64(101), r.Len())
	assert.Equal(t, "bytes 100-200/1000", r.ContentRange(1000))
}

func TestOpenEndedRange(t *testing.T) {
	r, err := Evaluate("bytes=100-", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, int64(100), r.Start)
	assert.Equal(t, int64(999), r.End)
	assert.Equal(t, int64(900), r.Len())
	assert.Equal(t, "bytes 100-999/1000", r.ContentRange(1000))
}

func TestSuffixRange(t *testing.T) {
	r, err := Evaluate("bytes=-100", 1000)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 900, End: 999}, *r)

	// Longer than the resource: clamp to the whole thing
	r, err = Evaluate("bytes=-5000", 1000)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: 999}, *r)

	_, err = Evaluate("bytes=-0", 1000)
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestBoundaryRanges(t *testing.T) {
	// Single first byte
	r, err := Evaluate("bytes=0-0", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Len())

	// Exactly the last byte
	r, err = Evaluate("bytes=999-999", 1000)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 999, End: 999}, *r)

	// Open-ended from the last byte
	r, err = Evaluate("bytes=999-", 1000)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 999, End: 999}, *r)
}

func TestUnsatisfiableRanges(t *testing.T) {
	cases := []string{
		"bytes=200-100",  // start after end
		"bytes=100-1000", // end == length
		"bytes=0-5000",   // end past length
		"bytes=1000-",    // start == length
		"bytes=5000-",    // start past length
	}

	for _, header := range cases {
		r, err := Evaluate(header, 1000)
		assert.Nil(t, r, header)
		assert.ErrorIs(t, err, ErrUnsatisfiable, header)
	}

	// Any range on an empty resource
	_, err := Evaluate("bytes=0-", 0)
	assert.ErrorIs(t, err, ErrUnsatisfiable)
	_, err = Evaluate("bytes=-1", 0)
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestMalformedRanges(t *testing.T) {
	cases := []string{
		"items=0-10",
		"bytes=",
		"bytes=-",
		"bytes=abc-def",
		"bytes=10",
		"bytes=0-10,20-30",
		"bytes=+1-5",
		"bytes=1--5",
	}

	for _, header := range cases {
		r, err := Evaluate(header, 1000)
		assert.Nil(t, r, header)
		assert.ErrorIs(t, err, ErrMalformed, header)
	}
}

func TestUnitIsCaseInsensitive(t *testing.T) {
	r, err := Evaluate("Bytes=1-2", 10)
	require.NoError(t, err)
	assert.Equal(t, "1-2", r.String())
}

func TestUnsatisfiedContentRange(t *testing.T) {
	assert.Equal(t, "bytes */1000", UnsatisfiedContentRange(1000))
}
