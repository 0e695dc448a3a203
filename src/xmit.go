package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Transmit queued up packets when the channel is clear.
 *
 * Description:	Producers of packets to be transmitted call tq_append
 *		and the transmit thread for that channel takes them
 *		out and transmits them in in the proper order: high
 *		priority is fully drained before low, FIFO within a
 *		priority class.
 *
 *		Channel access is p-persistence CSMA:
 *
 *		- Wait dwait * 10 ms for receiver squelch.
 *		- While the channel is busy (DCD asserted by any
 *		  demodulator on the channel), wait.
 *		- Draw a uniform random byte 0..255; if <= persist,
 *		  transmit; else wait slottime * 10 ms and try again.
 *		- On transmit:  assert PTT, send txdelay * 10 ms of
 *		  flags, the frame(s), txtail * 10 ms of flags,
 *		  deassert PTT.
 *
 *		Full-duplex mode bypasses the persistence loop.
 *
 *------------------------------------------------------------------*/

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

const WAIT_TIMEOUT_MS = 60 * 1000
const WAIT_CHECK_EVERY_MS = 10

func SLEEP_MS(n int) {
	time.Sleep(time.Duration(n) * time.Millisecond)
}

type xmit_s struct {
	audio_config *audio_s
	tq           *tq_s
	tx           *tx_s
	hs           *hdlc_send_s
	ptt          ptt_sink

	dcd func(channel int) bool /* Is the channel busy? */

	/*
	 * Parameters for the channel access discipline.  txdelay, slottime
	 * and txtail are in units of 10 mS; persist is a threshold on a
	 * scale of 0 to 255; fulldup is a flag.  They can be changed at runtime by client protocols so
	 * they live here rather than in the static configuration.
	 */
	xmit_txdelay  [MAX_RADIO_CHANS]int
	xmit_persist  [MAX_RADIO_CHANS]int
	xmit_slottime [MAX_RADIO_CHANS]int
	xmit_txtail   [MAX_RADIO_CHANS]int
	xmit_fulldup  [MAX_RADIO_CHANS]bool

	/*
	 * This is to prevent two channels from transmitting at the same
	 * time thru a stereo audio device.  We are not clever enough to
	 * combine two audio streams; they must go out one at a time.
	 */
	audio_out_dev_mutex [MAX_ADEVS]sync.Mutex

	tfmt *strftime.Strftime
}

func xmit_init(p_modem *audio_s, tq *tq_s, tx *tx_s, hs *hdlc_send_s, ptt ptt_sink, dcd func(channel int) bool) *xmit_s {

	var xs = &xmit_s{
		audio_config: p_modem,
		tq:           tq,
		tx:           tx,
		hs:           hs,
		ptt:          ptt,
		dcd:          dcd,
	}

	for ch := 0; ch < MAX_RADIO_CHANS; ch++ {
		xs.xmit_txdelay[ch] = p_modem.achan[ch].txdelay
		xs.xmit_persist[ch] = p_modem.achan[ch].persist
		xs.xmit_slottime[ch] = p_modem.achan[ch].slottime
		xs.xmit_txtail[ch] = p_modem.achan[ch].txtail
		xs.xmit_fulldup[ch] = p_modem.achan[ch].fulldup
	}

	if p_modem.timestamp_format != "" {
		var tfmt, err = strftime.New(p_modem.timestamp_format)
		if err != nil {
			dw_log.Error("Invalid timestamp format.", "format", p_modem.timestamp_format, "err", err)
		} else {
			xs.tfmt = tfmt
		}
	}

	return xs
}

/* Bit and millisecond conversions for one channel's data rate. */

func (xs *xmit_s) BITS_TO_MS(b int, ch int) int {
	return b * 1000 / xs.audio_config.achan[ch].baud
}

func (xs *xmit_s) MS_TO_BITS(ms int, ch int) int {
	return ms * xs.audio_config.achan[ch].baud / 1000
}

func (xs *xmit_s) timestampPrefix() string {
	if xs.tfmt == nil {
		return ""
	}
	return " " + xs.tfmt.FormatString(time.Now())
}

/*-------------------------------------------------------------------
 *
 * Name:        xmit_thread
 *
 * Purpose:     Thread for transmitting everything queued up for one
 *		channel.  Runs until shutdown.
 *
 *--------------------------------------------------------------------*/

func (xs *xmit_s) xmit_thread(channel int) {

	for {
		if !xs.tq.tq_wait_while_empty(channel) {
			return
		}

		for xs.tq.tq_peek(channel, TQ_PRIO_0_HI) != nil || xs.tq.tq_peek(channel, TQ_PRIO_1_LO) != nil {

			/*
			 * Wait for the channel to be clear.  If there is
			 * something in the high priority queue, begin
			 * transmitting immediately.  Otherwise, wait a random
			 * amount of time, in hopes of minimizing collisions.
			 */
			var ok = xs.wait_for_clear_channel(channel,
				xs.xmit_slottime[channel], xs.xmit_persist[channel], xs.xmit_fulldup[channel])

			var prio = TQ_PRIO_1_LO
			var pp = xs.tq.tq_remove(channel, TQ_PRIO_0_HI)
			if pp != nil {
				prio = TQ_PRIO_0_HI
			} else {
				pp = xs.tq.tq_remove(channel, TQ_PRIO_1_LO)
			}

			if pp == nil {
				continue
			}

			if !ok {
				/*
				 * Timeout waiting for clear channel.  Discard the packet.
				 */
				dw_log.Error("Waited too long for clear channel.  Discarding packet below.")
				dw_printf("[%d%c] %s%s\n", channel, priorityToRune(prio),
					pp.ax25_format_addrs(), ax25_safe_print(pp.ax25_get_info(), !pp.ax25_is_aprs()))
				continue
			}

			if frame_flavor(pp) == FLAVOR_APRS_DIGI {
				// It is generally agreed that APRS digipeaters should
				// send only one frame at a time rather than bundling
				// multiple frames into a single transmission.
				xs.xmit_ax25_frames(channel, prio, pp, 1)
			} else {
				xs.xmit_ax25_frames(channel, prio, pp, 256)
			}

			// Corresponding lock is in wait_for_clear_channel.
			xs.audio_out_dev_mutex[ACHAN2ADEV(channel)].Unlock()
		}
	}
}

func priorityToRune(prio int) rune {
	if prio == TQ_PRIO_0_HI {
		return 'H'
	}
	return 'L'
}

/*
 * Classify a frame for transmit handling.
 */

type flavor_t int

const (
	FLAVOR_APRS_NEW  flavor_t = iota /* APRS frame which was generated locally. */
	FLAVOR_APRS_DIGI                 /* APRS frame which is being digipeated. */
	FLAVOR_OTHER
)

func frame_flavor(pp *packet_t) flavor_t {

	if pp.ax25_is_aprs() {
		/* If any of the digipeater fields are marked as "has been */
		/* used" then it is being digipeated, not originated here. */
		if pp.ax25_get_heard() >= AX25_REPEATER_1 {
			return FLAVOR_APRS_DIGI
		}
		return FLAVOR_APRS_NEW
	}
	return FLAVOR_OTHER
}

/*-------------------------------------------------------------------
 *
 * Name:        xmit_ax25_frames
 *
 * Purpose:     Turn on transmitter and send one or more frames:
 *
 *			- txdelay of flags
 *			- the frame, and possibly others bundled in
 *			- txtail of flags
 *
 * Inputs:	max_bundle	- Max number of frames to send during
 *				  one transmission.
 *
 *--------------------------------------------------------------------*/

func (xs *xmit_s) xmit_ax25_frames(channel int, prio int, pp *packet_t, max_bundle int) {

	/*
	 * Turn on transmitter.  Start sending leading flag bytes.
	 */
	xs.ptt.ptt_set(OCTYPE_PTT, channel, true)

	var pre_flags = xs.MS_TO_BITS(xs.xmit_txdelay[channel]*10, channel) / 8
	var num_bits = xs.hs.layer2_preamble_postamble(channel, pre_flags)

	var numframe = 0

	var nb = xs.send_one_frame(channel, prio, pp)
	num_bits += nb
	if nb > 0 {
		numframe++
	}

	/*
	 * See if we can bundle additional frames into this transmission.
	 */
	var done = false
	for numframe < max_bundle && !done {

		/*
		 * Peek at what is available.  Don't remove from queue yet
		 * because it might not be eligible.
		 */
		prio = TQ_PRIO_1_LO
		pp = xs.tq.tq_peek(channel, TQ_PRIO_0_HI)
		if pp != nil {
			prio = TQ_PRIO_0_HI
		} else {
			pp = xs.tq.tq_peek(channel, TQ_PRIO_1_LO)
		}

		if pp == nil {
			done = true
			continue
		}

		switch frame_flavor(pp) {
		case FLAVOR_APRS_NEW, FLAVOR_OTHER:
			pp = xs.tq.tq_remove(channel, prio)
			nb = xs.send_one_frame(channel, prio, pp)
			num_bits += nb
			if nb > 0 {
				numframe++
			}
		default:
			done = true // not eligible for bundling.
		}
	}

	/*
	 * Need TXTAIL because we don't know exactly when the sound is done.
	 */
	var post_flags = xs.MS_TO_BITS(xs.xmit_txtail[channel]*10, channel) / 8
	num_bits += xs.hs.layer2_preamble_postamble(channel, post_flags)
	xs.tx.audio_flush(ACHAN2ADEV(channel))

	/*
	 * The transmission is now in the audio output pipeline; wait for
	 * the expected duration before releasing PTT so the frame is not
	 * chopped off.
	 */
	SLEEP_MS(xs.BITS_TO_MS(num_bits, channel))

	xs.ptt.ptt_set(OCTYPE_PTT, channel, false)
}

/*-------------------------------------------------------------------
 *
 * Name:        send_one_frame
 *
 * Purpose:     Display and send one frame.
 *
 * Returns:	Number of bits transmitted.
 *
 *--------------------------------------------------------------------*/

func (xs *xmit_s) send_one_frame(c int, p int, pp *packet_t) int {

	var ts = xs.timestampPrefix()

	dw_printf("[%d%c%s] %s", c, priorityToRune(p), ts, pp.ax25_format_addrs())

	/* Demystify non-APRS.  Same format for received frames. */

	if !pp.ax25_is_aprs() {
		var ftype, _, desc, _, _, _ = pp.ax25_frame_type()
		dw_printf("(%s)", desc)

		if ftype == frame_type_U_XID {
			var param xid_param_s
			var info2text string
			if xid_parse(pp.ax25_get_info(), &param, &info2text) {
				dw_printf(" %s\n", info2text)
			} else {
				dw_printf("\n")
			}
		} else {
			dw_printf("%s\n", ax25_safe_print(pp.ax25_get_info(), true))
		}
	} else {
		dw_printf("%s\n", ax25_safe_print(pp.ax25_get_info(), false))
	}

	pp.ax25_check_addresses()

	/*
	 * Transmit the frame.
	 */
	var send_invalid_fcs = false

	if xs.audio_config.xmit_error_rate != 0 {
		if float64(xs.audio_config.xmit_error_rate)/100.0 > rand.Float64() {
			send_invalid_fcs = true
			dw_printf("Intentionally sending invalid CRC for frame above.  Xmit Error rate = %d per cent.\n",
				xs.audio_config.xmit_error_rate)
		}
	}

	return xs.hs.layer2_send_frame(c, pp, send_invalid_fcs)
}

/*-------------------------------------------------------------------
 *
 * Name:        wait_for_clear_channel
 *
 * Purpose:     Wait until the channel is clear, using the
 *		p-persistence algorithm, and lock the audio output
 *		device.
 *
 * Returns:	true on success, false if the wait timed out.
 *
 *--------------------------------------------------------------------*/

func (xs *xmit_s) wait_for_clear_channel(channel int, slottime int, persist int, fulldup bool) bool {

	var n = 0

	/*
	 * For full duplex, skip the busy check and random wait.  We still
	 * need to wait if operating in stereo and the other audio half
	 * is busy.
	 */
	if !fulldup {

	start_over_again:

		for xs.dcd(channel) {
			SLEEP_MS(WAIT_CHECK_EVERY_MS)
			n++
			if n > WAIT_TIMEOUT_MS/WAIT_CHECK_EVERY_MS {
				return false
			}
		}

		/*
		 * For transceivers that can't turn around fast enough when
		 * using squelch and VOX.
		 */
		if xs.audio_config.achan[channel].dwait > 0 {
			SLEEP_MS(xs.audio_config.achan[channel].dwait * 10)
		}

		if xs.dcd(channel) {
			goto start_over_again
		}

		/*
		 * Wait random time.  Proceed to transmit sooner if anything
		 * shows up in the high priority queue.
		 */
		for xs.tq.tq_peek(channel, TQ_PRIO_0_HI) == nil {
			SLEEP_MS(slottime * 10)

			if xs.dcd(channel) {
				goto start_over_again
			}

			if rand.Int()&0xff <= persist {
				break
			}
		}
	}

	for !xs.audio_out_dev_mutex[ACHAN2ADEV(channel)].TryLock() {
		SLEEP_MS(WAIT_CHECK_EVERY_MS)
		n++
		if n > WAIT_TIMEOUT_MS/WAIT_CHECK_EVERY_MS {
			return false
		}
	}

	return true
}

/* Runtime adjustment entry points for client protocols. */

func (xs *xmit_s) xmit_set_txdelay(channel int, value int) {
	if channel >= 0 && channel < MAX_RADIO_CHANS {
		xs.xmit_txdelay[channel] = value
	}
}

func (xs *xmit_s) xmit_set_persist(channel int, value int) {
	if channel >= 0 && channel < MAX_RADIO_CHANS {
		xs.xmit_persist[channel] = value
	}
}

func (xs *xmit_s) xmit_set_slottime(channel int, value int) {
	if channel >= 0 && channel < MAX_RADIO_CHANS {
		xs.xmit_slottime[channel] = value
	}
}

func (xs *xmit_s) xmit_set_txtail(channel int, value int) {
	if channel >= 0 && channel < MAX_RADIO_CHANS {
		xs.xmit_txtail[channel] = value
	}
}

func (xs *xmit_s) xmit_set_fulldup(channel int, value bool) {
	if channel >= 0 && channel < MAX_RADIO_CHANS {
		xs.xmit_fulldup[channel] = value
	}
}
