package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", a.String())

	// Bare hex and uppercase prefix are accepted too.
	b, err := ParseAddress("1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := ParseAddress("0X1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	_, err := ParseAddress("0x1234")
	assert.Error(t, err)

	_, err = ParseAddress("")
	assert.Error(t, err)

	_, err = ParseAddress("0xzz11111111111111111111111111111111111111")
	assert.Error(t, err)
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, ZeroAddress.IsZero())

	a, err := ParseAddress("0x0000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.True(t, a.IsZero())

	b, err := ParseAddress("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.False(t, b.IsZero())
}

func TestAddressJSONRoundTrip(t *testing.T) {
	a, err := ParseAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"`, string(data))

	var back Address
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)

	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &back))
}
