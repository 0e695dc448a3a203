package malamute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

/* Example from the AX.25 v2.2 protocol spec. */

var xid_reference_payload = []byte{
	0x82, 0x80, 0x00, 0x17,
	0x02, 0x02, 0x21, 0x00,
	0x03, 0x03, 0x86, 0xa8, 0x02,
	0x06, 0x02, 0x04, 0x00,
	0x08, 0x01, 0x02,
	0x09, 0x02, 0x10, 0x00,
	0x0a, 0x01, 0x03,
}

func Test_xid_parse_reference_payload(t *testing.T) {

	var param xid_param_s
	var desc string
	require.True(t, xid_parse(xid_reference_payload, &param, &desc))

	assert.Equal(t, 0, param.full_duplex)
	assert.Equal(t, srej_single, param.srej)
	assert.Equal(t, 128, param.modulo)
	assert.Equal(t, 128, param.i_field_length_rx)
	assert.Equal(t, 2, param.window_size_rx)
	assert.Equal(t, 4096, param.ack_timer)
	assert.Equal(t, 3, param.retries)
}

func Test_xid_reference_payload_roundtrip(t *testing.T) {

	var param xid_param_s
	var desc string
	require.True(t, xid_parse(xid_reference_payload, &param, &desc))

	/* A command offers the menu of REJ and SREJ, reproducing the */
	/* original bytes exactly. */

	var encoded = xid_encode(&param, cr_cmd)
	assert.Equal(t, xid_reference_payload, encoded)
	assert.Len(t, encoded, 27)
}

func Test_xid_parse_empty_is_all_unknown(t *testing.T) {

	var param xid_param_s
	var desc string
	require.True(t, xid_parse(nil, &param, &desc))

	assert.Equal(t, G_UNKNOWN, param.full_duplex)
	assert.Equal(t, srej_not_specified, param.srej)
	assert.Equal(t, modulo_unknown, param.modulo)
	assert.Equal(t, G_UNKNOWN, param.i_field_length_rx)
	assert.Equal(t, G_UNKNOWN, param.window_size_rx)
	assert.Equal(t, G_UNKNOWN, param.ack_timer)
	assert.Equal(t, G_UNKNOWN, param.retries)
}

func Test_xid_defaults(t *testing.T) {

	var param = xid_param_s{
		full_duplex:       G_UNKNOWN,
		srej:              srej_not_specified,
		modulo:            modulo_unknown,
		i_field_length_rx: G_UNKNOWN,
		window_size_rx:    G_UNKNOWN,
		ack_timer:         G_UNKNOWN,
		retries:           G_UNKNOWN,
	}
	param.xid_apply_defaults()

	assert.Equal(t, 0, param.full_duplex)
	assert.Equal(t, srej_none, param.srej)
	assert.Equal(t, 8, param.modulo)
	assert.Equal(t, XID_DEFAULT_I_FIELD_LENGTH_RX, param.i_field_length_rx)
	assert.Equal(t, XID_DEFAULT_WINDOW_SIZE_MOD_8, param.window_size_rx)
	assert.Equal(t, XID_DEFAULT_ACK_TIMER, param.ack_timer)
	assert.Equal(t, XID_DEFAULT_RETRIES, param.retries)

	var p128 = xid_param_s{
		modulo:            128,
		window_size_rx:    G_UNKNOWN,
		i_field_length_rx: 256,
	}
	p128.xid_apply_defaults()
	assert.Equal(t, XID_DEFAULT_WINDOW_SIZE_MOD_128, p128.window_size_rx)
}

func Test_xid_rejects_garbage(t *testing.T) {

	var param xid_param_s
	var desc string

	assert.False(t, xid_parse([]byte{0x01, 0x80, 0x00, 0x00}, &param, &desc))
	assert.False(t, xid_parse([]byte{0x82, 0x55, 0x00, 0x00}, &param, &desc))
}

func Test_xid_roundtrip_property(t *testing.T) {
	// decode(encode(p)) = p for any valid parameter set.
	rapid.Check(t, func(t *rapid.T) {

		var modulo = rapid.SampledFrom([]int{8, 128}).Draw(t, "modulo")
		var max_window = 7
		if modulo == 128 {
			max_window = 127
		}

		var param = xid_param_s{
			full_duplex:       rapid.IntRange(0, 1).Draw(t, "full_duplex"),
			srej:              srej_t(rapid.IntRange(0, 2).Draw(t, "srej")),
			modulo:            modulo,
			i_field_length_rx: rapid.IntRange(1, 8191).Draw(t, "i_field_length_rx"),
			window_size_rx:    rapid.IntRange(1, max_window).Draw(t, "window_size_rx"),
			ack_timer:         rapid.IntRange(1, 65535).Draw(t, "ack_timer"),
			retries:           rapid.IntRange(0, 255).Draw(t, "retries"),
		}

		var cr = cr_res
		if rapid.Bool().Draw(t, "cmd") {
			cr = cr_cmd
		}

		var encoded = xid_encode(&param, cr)

		var decoded xid_param_s
		var desc string
		require.True(t, xid_parse(encoded, &decoded, &desc))

		assert.Equal(t, param.full_duplex, decoded.full_duplex)
		assert.Equal(t, param.modulo, decoded.modulo)
		assert.Equal(t, param.i_field_length_rx, decoded.i_field_length_rx)
		assert.Equal(t, param.window_size_rx, decoded.window_size_rx)
		assert.Equal(t, param.ack_timer, decoded.ack_timer)
		assert.Equal(t, param.retries, decoded.retries)

		if cr == cr_res {
			/* A response picks exactly the level that was encoded. */
			assert.Equal(t, param.srej, decoded.srej)
		}

		/* encode(decode(x)) is also the identity on these bytes. */
		assert.Equal(t, encoded, xid_encode(&decoded, cr))
	})
}
