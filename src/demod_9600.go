package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Demodulator for the baseband signal used by the
 *		"9600 baud" scrambled modem.
 *
 * Description:	By the time it gets here, the FSK signal is really a
 *		baseband signal.  At one extreme we could have a 4800 Hz
 *		square wave; at the other we could go a considerable
 *		number of bit times without any transitions.  The trick
 *		is to extract the digital data which has been distorted
 *		by going thru voice transceivers not intended to pass
 *		this sort of "audio" signal.
 *
 *		For G3RUH mode, data is "scrambled" to reduce the amount
 *		of DC bias.  The data stream is unscrambled in the HDLC
 *		bit decoder.
 *
 * References:	9600 Baud Packet Radio Modem Design
 *		http://www.amsat.org/amsat/articles/g3ruh/109.html
 *
 *---------------------------------------------------------------*/

import (
	"math"
)

var DCD_CONFIG_9600 = &DCDConfig{
	// Hysteresis: Can miss 0 out of 32 for detecting lock.
	// This is best for actual on-the-air signals.
	// Still too many brief false matches.
	DCD_THRESH_ON:  32,
	DCD_THRESH_OFF: 8,
	DCD_GOOD_WIDTH: 1024,
}

/*------------------------------------------------------------------
 *
 * Name:        demod_9600_init
 *
 * Purpose:     Initialize the 9600 (or higher) baud demodulator.
 *
 * Inputs:      modem_type	- Determines whether scrambling is used.
 *
 *		original_sample_rate
 *
 *		upsample	- Factor to upsample the incoming stream.
 *				  It works better if the data is upsampled:
 *				  this reduces the jitter for PLL
 *				  synchronization.
 *
 *		baud		- Data rate in bits per second.
 *
 *		D		- Demodulator state.
 *
 *----------------------------------------------------------------*/

func demod_9600_init(modem_type modem_t, original_sample_rate int, upsample int, baud int, D *demodulator_state_s) {

	if upsample < 1 {
		upsample = 1
	}
	if upsample > 4 {
		upsample = 4
	}

	*D = demodulator_state_s{}

	D.modem_type = modem_type
	D.num_slicers = 1

	D.lp_filter_width_sym = 1.0

	// Just round to nearest integer.
	D.lp_filter_taps = int(D.lp_filter_width_sym*float64(original_sample_rate)/float64(baud) + 0.5)

	D.lp_window = BP_WINDOW_COSINE

	D.lpf_baud = 1.00

	D.agc_fast_attack = 0.080
	D.agc_slow_decay = 0.00012

	D.pll_locked_inertia = 0.89
	D.pll_searching_inertia = 0.67

	// PLL needs to use the upsampled rate.

	D.pll_step_per_sample = int32(math.Round(TICKS_PER_PLL_CYCLE * float64(baud) / float64(original_sample_rate*upsample)))

	// The initial filter (before scattering) is based on the upsampled rate.

	var fc = float64(baud) * D.lpf_baud / float64(original_sample_rate*upsample)
	var full = make([]float64, D.lp_filter_taps*upsample)
	gen_lowpass(fc, full, D.lp_filter_taps*upsample, D.lp_window)

	// Use a polyphase filter to reduce the CPU load.  Upsampling with
	// zero stuffing would make most of the multiplies be by a stuffed
	// zero; instead we scatter the original filter across multiple
	// shorter filters and each input sample cycles around them to
	// produce the upsampled rate.

	var k = 0
	for i := 0; i < D.lp_filter_taps; i++ {
		for u := 0; u < upsample; u++ {
			D.u.bb.lp_polyphase[u][i] = full[k]
			k++
		}
	}

	/* Experiment with different slicing levels. */

	for j := 0; j < MAX_SLICERS; j++ {
		D.slice_point[j] = 0.02 * (float64(j) - 0.5*(MAX_SLICERS-1))
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        demod_9600_process_sample
 *
 * Purpose:     (1) Filter & slice the signal.
 *		(2) Recover clock and data.
 *
 * Inputs:	sam	- One sample of audio, range -32768 .. 32767.
 *
 *		upsample - Factor of additional filter phases to run.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) demod_9600_process_sample(channel int, sam int, upsample int, D *demodulator_state_s) {

	if upsample < 1 {
		upsample = 1
	}
	if upsample > 4 {
		upsample = 4
	}

	/* Scale to a nice number for convenience.  Consistent with the */
	/* AFSK demodulator, use only half of the dynamic range to have */
	/* some headroom. */

	var fsam = float64(sam) / 16384.0

	push_sample(fsam, D.u.bb.audio_in[:], D.lp_filter_taps)

	for u := 0; u < upsample; u++ {
		var out = convolve(D.u.bb.audio_in[:], D.u.bb.lp_polyphase[u][:], D.lp_filter_taps)
		rx.process_filtered_sample(channel, out, D)
	}
}

func (rx *rx_s) process_filtered_sample(channel int, fsam float64, D *demodulator_state_s) {

	var subchannel = 0

	/*
	 * Capture the post-filtering amplitude for display.
	 * This is similar to the AGC without the normalization step.
	 * We keep + and - peaks because there could be a DC bias.
	 */
	if fsam >= D.alevel_mark_peak {
		D.alevel_mark_peak = fsam*D.quick_attack + D.alevel_mark_peak*(1.0-D.quick_attack)
	} else {
		D.alevel_mark_peak = fsam*D.sluggish_decay + D.alevel_mark_peak*(1.0-D.sluggish_decay)
	}

	if fsam <= D.alevel_space_peak {
		D.alevel_space_peak = fsam*D.quick_attack + D.alevel_space_peak*(1.0-D.quick_attack)
	} else {
		D.alevel_space_peak = fsam*D.sluggish_decay + D.alevel_space_peak*(1.0-D.sluggish_decay)
	}

	/*
	 * The input level can vary greatly.  More importantly, there
	 * could be a DC bias which we need to remove.  Normalize the
	 * signal with automatic gain control (AGC) so the result is
	 * roughly in the -1.0 to +1.0 range.
	 */
	var demod_out float64
	D.m_peak, D.m_valley, demod_out = agc(fsam, D.agc_fast_attack, D.agc_slow_decay, D.m_peak, D.m_valley)

	if D.num_slicers <= 1 {
		rx.nudge_pll_9600(channel, subchannel, 0, demod_out, D)
	} else {
		for slice := 0; slice < D.num_slicers; slice++ {
			rx.nudge_pll_9600(channel, subchannel, slice, demod_out-D.slice_point[slice], D)
		}
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        nudge_pll_9600
 *
 * Purpose:	Update the PLL state for each audio sample.
 *
 * Description:	Like the AFSK case, except that on a zero crossing we
 *		interpolate between the two samples to get an estimate
 *		of when the crossing happened and pull the PLL toward
 *		that point, rather than toward zero.  This reduces
 *		jitter when the ratio of sample rate to baud is low.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) nudge_pll_9600(channel int, subchannel int, slice int, demod_out_f float64, D *demodulator_state_s) {

	var S = &D.slicer[slice]

	S.prev_d_c_pll = S.data_clock_pll

	// Perform the add as unsigned to avoid signed overflow error.
	S.data_clock_pll = int32(uint32(S.data_clock_pll) + uint32(D.pll_step_per_sample))

	if S.prev_d_c_pll > 1000000000 && S.data_clock_pll < -1000000000 {

		/* Overflow.  Was large positive, wrapped around, now large negative. */

		rx.hdlc_rec_bit(channel, subchannel, slice, bool2int(demod_out_f > 0), D.modem_type == MODEM_SCRAMBLE)
		rx.pll_dcd_each_symbol2(DCD_CONFIG_9600, D, channel, subchannel, slice)
	}

	/*
	 * Zero crossing?
	 */
	if (S.prev_demod_out_f < 0 && demod_out_f > 0) ||
		(S.prev_demod_out_f > 0 && demod_out_f < 0) {

		pll_dcd_signal_transition2(DCD_CONFIG_9600, D, slice, S.data_clock_pll)

		var target = float64(D.pll_step_per_sample) * demod_out_f / (demod_out_f - S.prev_demod_out_f)

		if S.data_detect {
			S.data_clock_pll = int32(float64(S.data_clock_pll)*D.pll_locked_inertia + target*(1.0-D.pll_locked_inertia))
		} else {
			S.data_clock_pll = int32(float64(S.data_clock_pll)*D.pll_searching_inertia + target*(1.0-D.pll_searching_inertia))
		}
	}

	/*
	 * Remember the demodulator output so we can compare next time
	 * for the DPLL sync.
	 */
	S.prev_demod_out_f = demod_out_f
}
