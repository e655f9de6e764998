package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsRoundTrip(t *testing.T) {
	fields := []string{"9128283H1", "", "99-16+", "TRSY1,with,commas"}
	payload := AppendFields(nil, fields)

	got, ok := DecodeFields(payload)
	require.True(t, ok)
	assert.Equal(t, fields, got)
}

func TestDecodeFieldsRejectsTruncated(t *testing.T) {
	payload := AppendFields(nil, []string{"abc", "def"})
	_, ok := DecodeFields(payload[:len(payload)-1])
	assert.False(t, ok)

	_, ok = DecodeFields(append(payload, 0x00))
	assert.False(t, ok, "trailing bytes")

	_, ok = DecodeFields(nil)
	assert.False(t, ok)
}
