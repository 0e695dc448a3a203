package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Extract HDLC frames from a stream of bits.
 *
 * Description:	Every (channel, subchannel, slicer) combination runs its
 *		own copy of this state machine.  Bits come in from the
 *		demodulator one at a time.  We watch for the flag pattern
 *		01111110 which separates frames, remove the zero bits
 *		inserted for "bit stuffing," and collect everything
 *		between two flags into a raw received bit buffer for the
 *		validation and bit fix up stage.
 *
 *------------------------------------------------------------------*/

/* Undo data scrambling for 9600 baud.  x^17 + x^12 + 1. */

func descramble(in int, state *int) int {
	var out = (in ^ (*state >> 16) ^ (*state >> 11)) & 1
	*state = (*state << 1) | (in & 1)
	return out
}

/*
 * This is the current state of one HDLC decoder.
 */

type hdlc_state_s struct {
	prev_raw bool /* Keep track of previous bit so */
	/* we can look for transitions. */

	lfsr int /* Descrambler shift register for 9600 baud. */

	prev_descram bool /* Previous descrambled bit for 9600 baud. */

	pat_det byte /* 8 bit pattern detector shift register. */

	rrbb *rrbb_t /* Accumulated raw received bits. */
}

/*
 * Everything one receive pipeline needs, grouped into a context value
 * rather than module scope singletons.
 */

type rx_s struct {
	audio_config *audio_s

	demod_st [MAX_RADIO_CHANS][MAX_SUBCHANS]*demodulator_state_s

	hdlc_st [MAX_RADIO_CHANS][MAX_SUBCHANS][MAX_SLICERS]*hdlc_state_s

	composite_dcd [MAX_RADIO_CHANS][MAX_SUBCHANS + 1][MAX_SLICERS]bool

	candidate   [MAX_RADIO_CHANS][MAX_SUBCHANS][MAX_SLICERS]candidate_t
	process_age [MAX_RADIO_CHANS]int

	dc_average [MAX_RADIO_CHANS]float64

	sample_sum   [MAX_RADIO_CHANS][MAX_SUBCHANS]int /* For decimation. */
	sample_count [MAX_RADIO_CHANS][MAX_SUBCHANS]int

	retry_queue *rq_s /* When present, bad-FCS buffers go to the */
	/* fix up worker instead of being handled inline. */

	deliver func(channel int, subchan int, slice int, pp *packet_t,
		alevel alevel_t, retries retry_t, spectrum string)

	dcd_change_hook func(channel int, state bool) /* e.g. drive a DCD output line. */

	ber_rand_seed int32 /* Own random number generator so we get the */
	/* same predictable results everywhere. */
}

/*------------------------------------------------------------------
 *
 * Name:	rx_new
 *
 * Purpose:	Set up demodulators and HDLC decoders for all channels
 *		described by the audio configuration.
 *
 * Inputs:	pa	- Audio configuration.
 *
 *		deliver	- Where good frames go.
 *
 *------------------------------------------------------------------*/

func rx_new(pa *audio_s, deliver func(channel int, subchan int, slice int, pp *packet_t,
	alevel alevel_t, retries retry_t, spectrum string)) *rx_s {

	var rx = &rx_s{
		audio_config:  pa,
		deliver:       deliver,
		ber_rand_seed: 1,
	}

	rx.demod_init()

	for ch := 0; ch < MAX_RADIO_CHANS; ch++ {
		if pa.chan_medium[ch] != MEDIUM_RADIO {
			continue
		}
		for sub := 0; sub < pa.achan[ch].num_subchan; sub++ {
			for slice := 0; slice < MAX_SLICERS; slice++ {
				var H = new(hdlc_state_s)
				rx.hdlc_st[ch][sub][slice] = H
				H.rrbb = rrbb_new(ch, sub, slice,
					pa.achan[ch].modem_type == MODEM_SCRAMBLE, H.lfsr, H.prev_descram)
			}
		}

		rx.process_age[ch] = PROCESS_AFTER_BITS *
			pa.adev[ACHAN2ADEV(ch)].samples_per_sec / pa.achan[ch].baud
	}

	return rx
}

const ber_rand_max = 0x7fffffff

func (rx *rx_s) ber_rand() int32 {
	rx.ber_rand_seed = int32((uint32(rx.ber_rand_seed)*1103515245)+12345) & ber_rand_max
	return rx.ber_rand_seed
}

/*------------------------------------------------------------------
 *
 * Name:	hdlc_rec_bit
 *
 * Purpose:	Extract HDLC frames from a stream of bits.
 *
 * Inputs:	channel	- Channel number.
 *
 *		subchan	- This allows multiple demodulators per channel.
 *
 *		slice	- Allows multiple slicers per demodulator.
 *
 *		raw 	- One bit from the demodulator, 0 or 1.
 *
 *		is_scrambled - Is the data scrambled?
 *
 * Description:	This is called once for each received bit.
 *		For each valid frame, the bits are handed to the
 *		validation / fix up stage.
 *
 *------------------------------------------------------------------*/

func (rx *rx_s) hdlc_rec_bit(channel int, subchan int, slice int, _raw int, is_scrambled bool) {

	var raw = _raw != 0

	// The -e option can artificially introduce the desired
	// Bit Error Rate (BER) for testing.

	if rx.audio_config.recv_ber != 0 {
		var r = float64(rx.ber_rand()) / float64(ber_rand_max)
		if rx.audio_config.recv_ber > r {
			raw = !raw
		}
	}

	/*
	 * Different state information for each channel / subchannel / slice.
	 */
	var H = rx.hdlc_st[channel][subchan][slice]

	/*
	 * Using NRZI encoding,
	 *   A '0' bit is represented by an inversion since previous bit.
	 *   A '1' bit is represented by no change.
	 */

	var dbit bool /* Data bit after undoing NRZI. */
	if is_scrambled {
		var descram = descramble(bool2int(raw), &H.lfsr)
		dbit = (descram != 0) == H.prev_descram
		H.prev_descram = descram != 0
		H.prev_raw = raw
	} else {
		dbit = raw == H.prev_raw
		H.prev_raw = raw
	}

	/*
	 * Octets are sent LSB first.
	 * Shift the most recent 8 bits thru the pattern detector.
	 */
	H.pat_det >>= 1
	if dbit {
		H.pat_det |= 0x80
	}

	H.rrbb.rrbb_append_bit(byte(bool2int(raw)))

	if H.pat_det == 0x7e {

		H.rrbb.rrbb_chop8()

		/*
		 * The special pattern 01111110 indicates beginning and
		 * ending of a frame.  If we have an adequate number of
		 * whole octets, it is a candidate for further processing.
		 */

		if H.rrbb.rrbb_get_len() >= MIN_FRAME_LEN*8 {

			var alevel = rx.demod_get_audio_level(channel, subchan)
			H.rrbb.rrbb_set_audio_level(alevel)

			if rx.retry_queue != nil {
				rx.retry_queue.rq_append(H.rrbb)
			} else {
				rx.hdlc_rec2_block(H.rrbb)
			}
			/* Now owned by someone else. */

			H.rrbb = rrbb_new(channel, subchan, slice, is_scrambled, H.lfsr, H.prev_descram)
		} else {
			H.rrbb.rrbb_clear(is_scrambled, H.lfsr, H.prev_descram)
		}

		/* Last bit of flag.  Needed to derive the first data bit. */

		H.rrbb.rrbb_append_bit(byte(bool2int(H.prev_raw)))

	} else if H.pat_det == 0xfe {

		/*
		 * Valid data will never have 7 one bits in a row.
		 *
		 *	11111110
		 *
		 * This indicates loss of signal.
		 */

		H.rrbb.rrbb_clear(is_scrambled, H.lfsr, H.prev_descram)

	}

	/*
	 * Unlike the old single pass decoder, there is nothing to do
	 * for normal data bits or the stuffed zero here.  The octet
	 * assembly happens later when the bit buffer is decoded, which
	 * allows trying the same received data more than once.
	 */
}

func bool2int(b bool) int {
	if b {
		return 1
	}
	return 0
}

/*-------------------------------------------------------------------
 *
 * Name:        dcd_change
 *
 * Purpose:     Combine DCD states of all subchannels/slicers into an
 *		overall state for the channel.
 *
 * Description:	DCD for the channel is active if ANY of the
 *		subchannels/slices are active.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) dcd_change(channel int, subchan int, slice int, state bool) {

	var old = rx.hdlc_rec_data_detect_any(channel)

	rx.composite_dcd[channel][subchan][slice] = state

	var newVal = rx.hdlc_rec_data_detect_any(channel)

	if newVal != old && rx.dcd_change_hook != nil {
		rx.dcd_change_hook(channel, newVal)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        hdlc_rec_data_detect_any
 *
 * Purpose:     Determine if the radio channel is currently busy with
 *		packet data.  This is used by the transmit logic to
 *		transmit only when the channel is clear.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) hdlc_rec_data_detect_any(channel int) bool {

	for sc := 0; sc < rx.audio_config.achan[channel].num_subchan; sc++ {
		for slice := 0; slice < MAX_SLICERS; slice++ {
			if rx.composite_dcd[channel][sc][slice] {
				return true
			}
		}
	}
	return false
}
