package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Convert frames to a stream of bits for transmission:
 *
 *			start flag
 *			bit stuffed data
 *			calculated FCS
 *			end flag
 *
 *		NRZI encoding for all of it, plus scrambling for the
 *		9600 baud modem.  Flags are also used as the idle filler
 *		pattern before and after the frame while the transmitter
 *		is on.
 *
 *------------------------------------------------------------------*/

/*
 * State of the serializer for one channel.  The bits go out through
 * put_bit which is normally the tone generator but tests can collect
 * them directly.
 */

type hdlc_send_s struct {
	audio_config *audio_s

	put_bit func(channel int, dat int)

	stuff [MAX_RADIO_CHANS]int /* Count of successive "1" bits so we know */
	/* when to break up a long run by stuffing. */

	nrzi_output [MAX_RADIO_CHANS]int /* Current NRZI signal state. */

	number_of_bits_sent [MAX_RADIO_CHANS]int
}

func hdlc_send_new(audio_config *audio_s, put_bit func(channel int, dat int)) *hdlc_send_s {
	return &hdlc_send_s{
		audio_config: audio_config,
		put_bit:      put_bit,
	}
}

/*-------------------------------------------------------------
 *
 * Name:	layer2_send_frame
 *
 * Purpose:	Serialize a frame, including flags, FCS, and the
 *		stuffing bits.
 *
 * Inputs:	bad_fcs	- Append an invalid FCS for testing purposes.
 *
 * Returns:	Number of bits sent including "flags" and the
 *		stuffing bits.  The required time can be calculated by
 *		dividing this number by the transmit rate of bits/sec.
 *
 *--------------------------------------------------------------*/

func (hs *hdlc_send_s) layer2_send_frame(channel int, pp *packet_t, bad_fcs bool) int {

	var fbuf = pp.ax25_pack()

	hs.number_of_bits_sent[channel] = 0

	hs.send_control_nrzi(channel, 0x7e) /* Start frame */

	for _, b := range fbuf {
		hs.send_data_nrzi(channel, int(b))
	}

	var fcs = fcs_calc(fbuf)

	if bad_fcs {
		/* For testing only - simulate a frame getting corrupted along the way. */
		hs.send_data_nrzi(channel, int(^fcs)&0xff)
		hs.send_data_nrzi(channel, int(^fcs>>8)&0xff)
	} else {
		hs.send_data_nrzi(channel, int(fcs)&0xff)
		hs.send_data_nrzi(channel, int(fcs>>8)&0xff)
	}

	hs.send_control_nrzi(channel, 0x7e) /* End frame */

	return hs.number_of_bits_sent[channel]
}

/*-------------------------------------------------------------
 *
 * Name:	layer2_preamble_postamble
 *
 * Purpose:	Send the filler pattern before and after the frame.
 *
 * Inputs:	nbytes	- Number of flag bytes to send.
 *
 * Returns:	Number of bits sent.  There is no bit-stuffing so we
 *		would expect this to be 8 * nbytes.
 *
 *--------------------------------------------------------------*/

func (hs *hdlc_send_s) layer2_preamble_postamble(channel int, nbytes int) int {

	hs.number_of_bits_sent[channel] = 0

	for j := 0; j < nbytes; j++ {
		hs.send_control_nrzi(channel, 0x7e)
	}

	return hs.number_of_bits_sent[channel]
}

/*
 * Send data with bit stuffing, or a control octet (the flag) without.
 * All bits are sent NRZI, LSB first.
 */

func (hs *hdlc_send_s) send_control_nrzi(channel int, x int) {
	for i := 0; i < 8; i++ {
		hs.send_bit_nrzi(channel, x&1)
		x >>= 1
	}
	hs.stuff[channel] = 0
}

func (hs *hdlc_send_s) send_data_nrzi(channel int, x int) {
	for i := 0; i < 8; i++ {
		hs.send_bit_nrzi(channel, x&1)
		if x&1 != 0 {
			hs.stuff[channel]++
			if hs.stuff[channel] == 5 {
				hs.send_bit_nrzi(channel, 0)
				hs.stuff[channel] = 0
			}
		} else {
			hs.stuff[channel] = 0
		}
		x >>= 1
	}
}

/*
 * NRZI encoding.
 * data 1 bit -> no change.
 * data 0 bit -> invert signal.
 */

func (hs *hdlc_send_s) send_bit_nrzi(channel int, b int) {
	if b == 0 {
		hs.nrzi_output[channel] = 1 - hs.nrzi_output[channel]
	}
	hs.put_bit(channel, hs.nrzi_output[channel])
	hs.number_of_bits_sent[channel]++
}
