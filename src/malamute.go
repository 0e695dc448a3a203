// Package malamute is a software TNC for amateur packet radio.
//
// The receive path takes audio samples through AFSK or scrambled-baseband
// demodulation, HDLC bit framing, frame validation with bit-error recovery,
// and the AX.25 packet model, then feeds applications such as the APRS
// digipeater.  The transmit path queues outbound frames per channel, gates
// them against channel access timing, and serializes them back into audio.
package malamute

/*
 * Maximum number of audio devices.
 * Three is probably adequate for standard version.
 * Larger reasonable numbers should also be fine.
 */

const MAX_ADEVS = 3

/*
 * Maximum number of radio channels.
 * Note that there could be gaps.
 * Suppose audio device 0 was in mono mode and audio device 1 was stereo.
 * The channels available would be:
 *
 *	ADevice 0:	channel 0
 *	ADevice 1:	left = 2, right = 3
 */

const MAX_RADIO_CHANS = MAX_ADEVS * 2

const MAX_TOTAL_CHANS = 16

/*
 * Maximum number of modems per channel.
 * I called them "subchannels" because it is short and unambiguous.
 * Nothing magic about the number.  Could be larger
 * but CPU demands might be overwhelming.
 */

const MAX_SUBCHANS = 9

/*
 * Each one of these can have multiple slicers, at
 * different levels, to compensate for different
 * amplitudes of the AFSK tones.
 */

const MAX_SLICERS = 9

/* Audio device of a channel, and first channel of an audio device. */

func ACHAN2ADEV(c int) int {
	return c / 2
}

func ADEVFIRSTCHAN(a int) int {
	return a * 2
}

/*
 * Sound card interface defaults.
 */

const DEFAULT_SAMPLES_PER_SEC = 44100
const DEFAULT_BITS_PER_SAMPLE = 16
const DEFAULT_NUM_CHANNELS = 1

const DEFAULT_MARK_FREQ = 1200
const DEFAULT_SPACE_FREQ = 2200
const DEFAULT_BAUD = 1200

const MIN_BAUD = 100
const MAX_BAUD = 10000

/*
 * Typical transmit timings, in units of 10 ms, except persist which
 * is a threshold for a random byte on a scale of 0 to 255.
 */

const DEFAULT_DWAIT = 0
const DEFAULT_SLOTTIME = 10
const DEFAULT_PERSIST = 63
const DEFAULT_TXDELAY = 30
const DEFAULT_TXTAIL = 10

/*
 * How a channel is connected.  Everything here is a radio modem but
 * the enumeration leaves room for gaps in the channel numbering.
 */

type medium_t int

const (
	MEDIUM_NONE medium_t = iota
	MEDIUM_RADIO
)

/*
 * Modem families for a subchannel.
 */

type modem_t int

const (
	MODEM_OFF modem_t = iota
	MODEM_AFSK
	MODEM_BASEBAND
	MODEM_SCRAMBLE
)

/*
 * Bit-error recovery effort, in increasing order of CPU appetite.
 */

type retry_t int

const (
	RETRY_NONE retry_t = iota
	RETRY_INVERT_SINGLE
	RETRY_INVERT_DOUBLE
	RETRY_INVERT_TRIPLE
	RETRY_INVERT_TWO_SEP
	RETRY_MAX
)

/*
 * Sanity test to apply when bit fiddling produced a good CRC.
 */

type sanity_t int

const (
	SANITY_APRS sanity_t = iota
	SANITY_AX25
	SANITY_NONE
)

/*
 * Audio level of a received frame.
 * Negative values mean "not applicable" for the modem type.
 */

type alevel_t struct {
	rec   int
	mark  int
	space int
}
