package malamute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
 * Full modem loopback:  frames are turned into audio samples by the
 * tone generator and recovered by the demodulator, like gen_packets
 * piped into atest.
 */

type modem_loopback_s struct {
	config   *audio_s
	sink     *buffer_sink_s
	tx       *tx_s
	hs       *hdlc_send_s
	received []*packet_t
}

func modem_loopback(t *testing.T, modem modem_t, baud int, samples_per_sec int, profiles string) *modem_loopback_s {
	t.Helper()

	var ml = &modem_loopback_s{}

	ml.config = audio_config_defaults()
	ml.config.chan_medium[0] = MEDIUM_RADIO
	ml.config.adev[0].samples_per_sec = samples_per_sec
	ml.config.achan[0].baud = baud
	ml.config.achan[0].modem_type = modem
	ml.config.achan[0].profiles = profiles
	if modem == MODEM_SCRAMBLE {
		ml.config.achan[0].mark_freq = 0
		ml.config.achan[0].space_freq = 0
	} else if baud < 600 {
		ml.config.achan[0].mark_freq = 1600
		ml.config.achan[0].space_freq = 1800
	}

	ml.sink = audio_buffer_sink()
	ml.tx = gen_tone_init(ml.config, 50, ml.sink)
	ml.hs = hdlc_send_new(ml.config, ml.tx.tone_gen_put_bit)

	return ml
}

func (ml *modem_loopback_s) transmit(pp *packet_t) {
	ml.hs.layer2_preamble_postamble(0, 32)
	ml.hs.layer2_send_frame(0, pp, false)
	ml.hs.layer2_preamble_postamble(0, 8)
	ml.tx.audio_flush(0)
}

func (ml *modem_loopback_s) receive() {
	var rx = rx_new(ml.config, func(channel int, subchan int, slice int, pp *packet_t,
		alevel alevel_t, retries retry_t, spectrum string) {
		ml.received = append(ml.received, pp)
	})

	var src = audio_buffer_source(ml.sink.data)
	for {
		var sam = demod_get_sample(src, ml.config.adev[0].bits_per_sample)
		if sam >= 256*256 {
			break
		}
		rx.multi_modem_process_sample(0, sam)
	}
}

func Test_modem_loopback_1200_afsk(t *testing.T) {
	var ml = modem_loopback(t, MODEM_AFSK, 1200, 44100, "A")

	var pp = ax25_from_text("WB2OSZ-15>TEST:,The quick brown fox jumps over the lazy dog!", true)
	require.NotNil(t, pp)

	for i := 0; i < 3; i++ {
		ml.transmit(ax25_dup(pp))
	}
	ml.receive()

	require.Len(t, ml.received, 3)
	assert.Equal(t, pp.frame_data, ml.received[0].frame_data)
}

func Test_modem_loopback_300_afsk(t *testing.T) {
	var ml = modem_loopback(t, MODEM_AFSK, 300, 44100, "A")

	var pp = ax25_from_text("W1ABC>TEST03,WIDE3-2:three hundred baud", true)
	require.NotNil(t, pp)

	ml.transmit(pp)
	ml.receive()

	require.GreaterOrEqual(t, len(ml.received), 1)
	assert.Equal(t, pp.frame_data, ml.received[0].frame_data)
}

func Test_modem_loopback_9600_scrambled(t *testing.T) {
	var ml = modem_loopback(t, MODEM_SCRAMBLE, 9600, 48000, " ")

	var pp = ax25_from_text("WB2OSZ-15>TEST:,G3RUH scrambled baseband loopback.", true)
	require.NotNil(t, pp)

	ml.transmit(pp)
	ml.receive()

	require.GreaterOrEqual(t, len(ml.received), 1)
	assert.Equal(t, pp.frame_data, ml.received[0].frame_data)
}

func Test_modem_loopback_multislice_votes_once(t *testing.T) {
	// With the + option several slicers run in parallel; the voter
	// must deliver a clean frame only once.
	var ml = modem_loopback(t, MODEM_AFSK, 1200, 44100, "A+")

	var pp = ax25_from_text("WB2OSZ-15>TEST:voting test", true)
	require.NotNil(t, pp)

	ml.transmit(pp)
	ml.receive()

	assert.Len(t, ml.received, 1)
}

func Test_modem_loopback_decimate(t *testing.T) {
	// Decimation reduces CPU cost; a clean strong signal still decodes.
	var ml = modem_loopback(t, MODEM_AFSK, 1200, 44100, "A")
	ml.config.achan[0].decimate = 2

	var pp = ax25_from_text("WB2OSZ-15>TEST:decimated by two", true)
	require.NotNil(t, pp)

	ml.transmit(pp)
	ml.receive()

	require.GreaterOrEqual(t, len(ml.received), 1)
	assert.Equal(t, pp.frame_data, ml.received[0].frame_data)
}
