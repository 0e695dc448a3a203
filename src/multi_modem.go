package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Use multiple modems in parallel to increase the
 *		probability of decoding a frame, and pick the best
 *		result when several of them succeed.
 *
 * Description:	An incoming audio sample is fed into all of a channel's
 *		subchannels.  When the same frame is decoded by more
 *		than one subchannel or slicer within a short window,
 *		identified by whole-frame CRC equality, only one is
 *		delivered upstream.
 *
 *		A fancier scheme would compare the bits against one
 *		another in a "voting" manner but the results are
 *		awfully good already.
 *
 *------------------------------------------------------------------*/

import (
	"math"
)

// Candidates for further processing.

type candidate_t struct {
	packet_p *packet_t
	alevel   alevel_t
	retries  retry_t /* Number of bits that were modified to get a good CRC. */
	age      int
	crc      uint16
	score    int
}

/* Wait this many bit times for other subchannels to catch up. */

const PROCESS_AFTER_BITS = 3

/*------------------------------------------------------------------------------
 *
 * Name:	multi_modem_process_sample
 *
 * Purpose:	Feed the sample into the proper modem(s) for the channel.
 *
 *------------------------------------------------------------------------------*/

func (rx *rx_s) multi_modem_process_sample(channel int, audio_sample int) {

	// Accumulate an average DC bias level.
	// Shouldn't happen with a soundcard but could with a mistuned SDR.

	rx.dc_average[channel] = rx.dc_average[channel]*0.999 + float64(audio_sample)*0.001

	var num_subchan = rx.audio_config.achan[channel].num_subchan
	var num_slicers = rx.audio_config.achan[channel].num_slicers

	if num_subchan <= 0 || num_subchan > MAX_SUBCHANS ||
		num_slicers <= 0 || num_slicers > MAX_SLICERS {
		dw_log.Error("Something is seriously wrong in multi_modem_process_sample.",
			"chan", channel, "num_subchan", num_subchan, "num_slicers", num_slicers)
		return
	}

	/* Send the same thing to all. */

	for d := 0; d < num_subchan; d++ {
		rx.demod_process_sample(channel, d, audio_sample)
	}

	for subchan := 0; subchan < num_subchan; subchan++ {
		for slice := 0; slice < num_slicers; slice++ {
			var c = &rx.candidate[channel][subchan][slice]
			if c.packet_p != nil {
				c.age++
				if c.age > rx.process_age[channel] {
					rx.pick_best_candidate(channel)
				}
			}
		}
	}
}

func (rx *rx_s) multi_modem_get_dc_average(channel int) int {
	// Scale to +- 200 so it is like the deviation measurement.
	return int(rx.dc_average[channel] * (200.0 / 32767.0))
}

/*-------------------------------------------------------------------
 *
 * Name:        multi_modem_process_rec_frame
 *
 * Purpose:     This is called when we receive a frame with a valid
 *		FCS and acceptable size.
 *
 * Inputs:	fbuf	- HDLC frame contents, excluding the FCS.
 *		retries	- Level of bit correction used.
 *
 * Description:	Add to list of candidates.  The best one will be
 *		picked later.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) multi_modem_process_rec_frame(channel int, subchan int, slice int, fbuf []byte, alevel alevel_t, retries retry_t) {

	var pp = ax25_from_frame(fbuf, alevel)
	if pp == nil {
		return
	}

	/*
	 * If only one demodulator and slicer, push it thru and forget
	 * about all this foolishness.
	 */
	if rx.audio_config.achan[channel].num_subchan == 1 &&
		rx.audio_config.achan[channel].num_slicers == 1 {
		rx.deliver(channel, subchan, slice, pp, alevel, retries, "")
		return
	}

	/*
	 * Otherwise, save them up for a few bit times so we can pick the best.
	 */
	var c = &rx.candidate[channel][subchan][slice]

	if c.packet_p != nil {
		/* Oops!  Didn't expect it to be there. */
		c.packet_p = nil
	}

	c.packet_p = pp
	c.alevel = alevel
	c.retries = retries
	c.age = 0
	c.crc = pp.ax25_m_m_crc()
}

/*-------------------------------------------------------------------
 *
 * Name:        pick_best_candidate
 *
 * Purpose:     This is called when we have one or more candidates
 *		available for a certain amount of time.  Pick the best
 *		one and send it up to the application; discard the rest.
 *
 * Rules:	We prefer one received perfectly but will settle for
 *		one where some bits had to be flipped to get a good CRC.
 *		Bump the score up slightly if others nearby have the
 *		same CRC.
 *
 *--------------------------------------------------------------------*/

/* This is a suitable order for interleaved "G" demodulators. */

func (rx *rx_s) subchan_from_n(channel int, x int) int {
	return x % rx.audio_config.achan[channel].num_subchan
}

func (rx *rx_s) slice_from_n(channel int, x int) int {
	return x / rx.audio_config.achan[channel].num_subchan
}

func (rx *rx_s) pick_best_candidate(channel int) {

	var num_slicers = rx.audio_config.achan[channel].num_slicers
	if num_slicers < 1 {
		num_slicers = 1
	}
	var num_bars = num_slicers * rx.audio_config.achan[channel].num_subchan

	var spectrum = make([]byte, num_bars)

	for n := 0; n < num_bars; n++ {
		var c = &rx.candidate[channel][rx.subchan_from_n(channel, n)][rx.slice_from_n(channel, n)]

		/* Build the spectrum display. */

		switch {
		case c.packet_p == nil:
			spectrum[n] = '_'
		case c.retries == RETRY_NONE:
			spectrum[n] = '|'
		case c.retries == RETRY_INVERT_SINGLE:
			spectrum[n] = ':'
		default:
			spectrum[n] = '.'
		}

		/* Beginning score depends on effort to get a valid frame CRC. */

		if c.packet_p == nil {
			c.score = 0
		} else {
			/* The extra 1 makes the minimum score 1 for anything */
			/* received, so the passall case doesn't confuse the */
			/* search for the best. */
			c.score = int(RETRY_MAX)*1000 - int(c.retries)*1000 + 1
		}
	}

	/* Bump it up slightly if others nearby have the same CRC. */

	for n := 0; n < num_bars; n++ {
		var cn = &rx.candidate[channel][rx.subchan_from_n(channel, n)][rx.slice_from_n(channel, n)]
		if cn.packet_p == nil {
			continue
		}
		for m := 0; m < num_bars; m++ {
			var cm = &rx.candidate[channel][rx.subchan_from_n(channel, m)][rx.slice_from_n(channel, m)]
			if m != n && cm.packet_p != nil && cn.crc == cm.crc {
				cn.score += num_bars + 1 - int(math.Abs(float64(m-n)))
			}
		}
	}

	var best_n, best_score = 0, 0
	for n := 0; n < num_bars; n++ {
		var c = &rx.candidate[channel][rx.subchan_from_n(channel, n)][rx.slice_from_n(channel, n)]
		if c.packet_p != nil && c.score > best_score {
			best_score = c.score
			best_n = n
		}
	}

	if best_score == 0 {
		dw_log.Error("Unexpected internal problem in pick_best_candidate.  How can best score be zero?")
		return
	}

	/* Delete those not chosen. */

	for n := 0; n < num_bars; n++ {
		if n != best_n {
			rx.candidate[channel][rx.subchan_from_n(channel, n)][rx.slice_from_n(channel, n)].packet_p = nil
		}
	}

	/* Pass along the winner. */

	var j = rx.subchan_from_n(channel, best_n)
	var k = rx.slice_from_n(channel, best_n)
	var c = &rx.candidate[channel][j][k]

	rx.deliver(channel, j, k, c.packet_p, c.alevel, c.retries, string(spectrum))
	c.packet_p = nil

	/* Clear in preparation for next time. */

	rx.candidate[channel] = [MAX_SUBCHANS][MAX_SLICERS]candidate_t{}
}
