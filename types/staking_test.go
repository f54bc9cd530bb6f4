package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakePositionCodec(t *testing.T) {
	p := &StakePosition{Principal: "tl1rn5evt8jyynflgzq32plvrrgtve6zmu8ze4dvh", Amount: 1000, StartTime: 1735948800}
	data, err := p.Marshal()
	require.NoError(t, err)

	var got StakePosition
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, *p, got)
	assert.True(t, got.Active())
}

func TestStakePositionActive(t *testing.T) {
	var nilPos *StakePosition
	assert.False(t, nilPos.Active())
	assert.False(t, (&StakePosition{Principal: "a"}).Active())
}

func TestStakePositionUnmarshalGarbage(t *testing.T) {
	var p StakePosition
	assert.Error(t, p.Unmarshal([]byte{0xff, 0x00}))
}
