package malamute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_fcs_known_value(t *testing.T) {
	// CRC-16/X.25 check value for the classic test string.
	assert.Equal(t, uint16(0x906e), fcs_calc([]byte("123456789")))
}

func Test_fcs_good_residue(t *testing.T) {
	// Appending the FCS, low byte first, and running the CRC over the
	// whole thing yields the magic residue for any input.
	rapid.Check(t, func(t *rapid.T) {
		var data = rapid.SliceOfN(rapid.Byte(), 0, 300).Draw(t, "data")

		var fcs = fcs_calc(data)
		var frame = append(append([]byte{}, data...), byte(fcs&0xff), byte(fcs>>8))

		assert.Equal(t, uint16(FCS_GOOD_RESIDUE), crc16(frame, 0xffff))
	})
}

func Test_crc16_seed_chaining(t *testing.T) {
	var a = []byte("WB2OSZ-15")
	var b = []byte("TEST")

	var one = crc16(append(append([]byte{}, a...), b...), 0xffff)
	var two = crc16(b, crc16(a, 0xffff))
	assert.Equal(t, one, two)
}
