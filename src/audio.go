package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Audio configuration and the byte-stream interfaces
 *		between the modems and the outside world.
 *
 * Description:	Samples move as bytes:  one per sample for 8 bit audio
 *		or two, little endian signed, for 16 bit.  Stereo is
 *		interleaved L,R.  A negative value from a source means
 *		end of stream.
 *
 *		Sources include a .wav file, raw bytes on stdin, UDP
 *		datagrams, or a sound device.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"io"
	"net"

	"github.com/pkg/errors"
)

/*
 * Properties of one audio device.
 */

type adev_s struct {
	defined bool

	num_channels    int /* Should be 1 for mono or 2 for stereo. */
	samples_per_sec int /* Audio sampling rate.  Typical values 11025, 22050, 44100. */
	bits_per_sample int /* 8 (unsigned char) or 16 (signed short). */
}

/*
 * Properties of one radio channel.
 */

type achan_s struct {
	modem_type modem_t

	mark_freq  int /* Two tones for AFSK modulation, in Hz. */
	space_freq int /* Standard tones are 1200 & 2200 for 1200 baud. */

	baud int /* Data bits per second. */

	profiles string /* 'A' - 'B' and optional + for multiple slicers. */

	num_subchan int /* Number of demodulators.  Derived from profiles. */
	num_slicers int /* Number of slicers per demodulator. */

	decimate int /* Reduce AFSK sample rate by this factor to */
	/* decrease computational requirements. */

	upsample int /* Upsample by this factor for baseband. */

	fix_bits retry_t /* Level of effort to recover from a bad FCS. */

	sanity_test sanity_t /* Sanity test to apply when fix up changed bits. */

	passall bool /* Allow thru even with bad CRC. */

	mycall string /* Station callsign assigned to the channel. */

	/* Channel access, all in units of 10 mS. */

	dwait    int /* Extra delay for receiver squelch. */
	slottime int /* Slot time for p-persistence. */
	persist  int /* Probability of transmitting after slot, 0 .. 255. */
	txdelay  int /* Keyup delay before frame. */
	txtail   int /* Delay before releasing PTT after frame. */

	fulldup bool /* Full duplex skips the channel busy wait. */
}

type audio_s struct {
	adev [MAX_ADEVS]adev_s

	chan_medium [MAX_TOTAL_CHANS]medium_t

	achan [MAX_RADIO_CHANS]achan_s

	recv_ber float64 /* Artificial bit error rate for testing. */

	xmit_error_rate int /* Percentage of transmitted frames to corrupt. */

	timestamp_format string /* strftime format for monitor timestamps, */
	/* empty to disable. */
}

/* Sensible defaults, same as a traditional TNC out of the box. */

func audio_config_defaults() *audio_s {
	var pa = new(audio_s)
	pa.adev[0] = adev_s{
		defined:         true,
		num_channels:    DEFAULT_NUM_CHANNELS,
		samples_per_sec: DEFAULT_SAMPLES_PER_SEC,
		bits_per_sample: DEFAULT_BITS_PER_SAMPLE,
	}
	for channel := 0; channel < MAX_RADIO_CHANS; channel++ {
		pa.achan[channel] = achan_s{
			modem_type:  MODEM_AFSK,
			mark_freq:   DEFAULT_MARK_FREQ,
			space_freq:  DEFAULT_SPACE_FREQ,
			baud:        DEFAULT_BAUD,
			profiles:    "A",
			fix_bits:    RETRY_NONE,
			sanity_test: SANITY_APRS,
			dwait:       DEFAULT_DWAIT,
			slottime:    DEFAULT_SLOTTIME,
			persist:     DEFAULT_PERSIST,
			txdelay:     DEFAULT_TXDELAY,
			txtail:      DEFAULT_TXTAIL,
		}
	}
	return pa
}

/*
 * A source of audio bytes.  Returns 0..255, or negative at end of
 * stream.
 */

type audio_byte_source interface {
	audio_get() int
}

/*
 * Byte source wrapping any reader, e.g. stdin.
 */

type stream_source_s struct {
	r *bufio.Reader
}

func audio_stream_source(r io.Reader) audio_byte_source {
	return &stream_source_s{r: bufio.NewReaderSize(r, 64*1024)}
}

func (s *stream_source_s) audio_get() int {
	var b, err = s.r.ReadByte()
	if err != nil {
		return -1
	}
	return int(b)
}

/*
 * Byte source fed by UDP datagrams, e.g. raw audio from an SDR.
 */

type udp_source_s struct {
	conn *net.UDPConn
	buf  []byte
	next int
	len  int
}

func audio_udp_source(addr string) (audio_byte_source, error) {
	var udp_addr, err = net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "resolve UDP audio address")
	}
	conn, err := net.ListenUDP("udp", udp_addr)
	if err != nil {
		return nil, errors.Wrap(err, "listen for UDP audio")
	}
	return &udp_source_s{
		conn: conn,
		buf:  make([]byte, 65536),
	}, nil
}

func (s *udp_source_s) audio_get() int {
	for s.next >= s.len {
		var n, _, err = s.conn.ReadFromUDP(s.buf)
		if err != nil {
			if shutdown_requested() {
				return -1
			}
			dw_log.Error("UDP audio receive error.", "err", err)
			return -1
		}
		s.next = 0
		s.len = n
	}
	var b = s.buf[s.next]
	s.next++
	return int(b)
}

/*
 * In-memory source and sink, used by the test harnesses and for
 * loopback testing.
 */

type buffer_source_s struct {
	data []byte
	next int
}

func audio_buffer_source(data []byte) *buffer_source_s {
	return &buffer_source_s{data: data}
}

func (s *buffer_source_s) audio_get() int {
	if s.next >= len(s.data) {
		return -1
	}
	var b = s.data[s.next]
	s.next++
	return int(b)
}

type buffer_sink_s struct {
	data []byte
}

func audio_buffer_sink() *buffer_sink_s {
	return &buffer_sink_s{}
}

func (s *buffer_sink_s) audio_put(a int, b byte) {
	s.data = append(s.data, b)
}

func (s *buffer_sink_s) audio_flush(a int) {}
