package malamute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_rrbb_append_and_chop(t *testing.T) {
	var b = rrbb_new(0, 1, 2, false, 0, false)

	assert.Equal(t, 0, b.rrbb_get_len())
	assert.Equal(t, 0, b.rrbb_get_chan())
	assert.Equal(t, 1, b.rrbb_get_subchan())
	assert.Equal(t, 2, b.rrbb_get_slice())

	for i := 0; i < 20; i++ {
		b.rrbb_append_bit(byte(i & 1))
	}
	assert.Equal(t, 20, b.rrbb_get_len())
	assert.Equal(t, byte(1), b.rrbb_get_bit(1))
	assert.Equal(t, byte(0), b.rrbb_get_bit(2))

	b.rrbb_chop8()
	assert.Equal(t, 12, b.rrbb_get_len())
}

func Test_rrbb_keeps_descrambler_state(t *testing.T) {
	var b = rrbb_new(0, 0, 0, true, 0x1abcd, true)

	assert.True(t, b.rrbb_get_is_scrambled())
	assert.Equal(t, 0x1abcd, b.rrbb_get_descram_state())
	assert.True(t, b.rrbb_get_prev_descram())

	b.rrbb_clear(true, 0x00001, false)
	assert.Equal(t, 0x00001, b.rrbb_get_descram_state())
	assert.False(t, b.rrbb_get_prev_descram())
	assert.Equal(t, 0, b.rrbb_get_len())
}

func Test_rrbb_full_is_silently_discarded(t *testing.T) {
	var b = rrbb_new(0, 0, 0, false, 0, false)
	for i := 0; i < MAX_NUM_BITS+100; i++ {
		b.rrbb_append_bit(1)
	}
	assert.Equal(t, MAX_NUM_BITS, b.rrbb_get_len())
}
