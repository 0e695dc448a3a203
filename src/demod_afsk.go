package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Demodulator for Audio Frequency Shift Keying (AFSK).
 *
 * Input:	Audio samples from either a file or the sound device.
 *
 * Outputs:	Calls hdlc_rec_bit for each bit demodulated.
 *
 *---------------------------------------------------------------*/

import (
	"math"
)

var DCD_CONFIG_AFSK = GenericDCDConfig()

// Cosine table indexed by the high byte of a 32 bit phase accumulator.

var fcos256_table [256]float64

func init() {
	for j := range fcos256_table {
		fcos256_table[j] = math.Cos(float64(j) * 2.0 * math.Pi / 256.0)
	}
}

func fcos256(x uint32) float64 {
	return fcos256_table[(x>>24)&0xff]
}

func fsin256(x uint32) float64 {
	return fcos256_table[((x>>24)-64)&0xff]
}

/*
 * For the multi-slicer case: amount of boost applied to the space
 * amplitude for each slicer, logarithmically spaced.
 */

const MIN_G = 0.5
const MAX_G = 4.0

/*------------------------------------------------------------------
 *
 * Name:        demod_afsk_init
 *
 * Purpose:     Initialization for an AFSK demodulator.
 *		Select appropriate parameters and set up filters.
 *
 * Inputs:   	samples_per_sec	- Audio sample rate after any decimation.
 *		baud
 *		mark_freq
 *		space_freq
 *		profile		- 'A' or 'B'.
 *
 *		D		- Demodulator state for the subchannel.
 *
 *----------------------------------------------------------------*/

func demod_afsk_init(samples_per_sec int, baud int, mark_freq int, space_freq int, profile byte, D *demodulator_state_s) {

	*D = demodulator_state_s{}
	D.modem_type = MODEM_AFSK
	D.num_slicers = 1
	D.profile = profile

	switch D.profile {

	case 'A', 'E': // 'E' for compatibility during transition.

		D.profile = 'A'

		/* A bandpass prefilter, then two free running local */
		/* oscillators and a root raised cosine filter which */
		/* reduces intersymbol interference. */

		D.use_prefilter = true

		if baud > 600 {
			D.prefilter_baud = 0.155
			// Low cutoff below mark, high cutoff above space
			// as fraction of the symbol rate.
			// It turns out that narrower than intuition suggests is better.
			D.pre_filter_len_sym = 383 * 1200. / 44100. // about 10.4 symbols
			D.pre_window = BP_WINDOW_TRUNCATED
		} else {
			D.prefilter_baud = 0.87
			D.pre_filter_len_sym = 1.857
			D.pre_window = BP_WINDOW_COSINE
		}

		// Local oscillators for Mark and Space tones.

		D.u.afsk.m_osc_delta = uint32(math.Round(math.Pow(2., 32.) * float64(mark_freq) / float64(samples_per_sec)))
		D.u.afsk.s_osc_delta = uint32(math.Round(math.Pow(2., 32.) * float64(space_freq) / float64(samples_per_sec)))

		D.u.afsk.use_rrc = true
		D.u.afsk.rrc_width_sym = 2.80
		D.u.afsk.rrc_rolloff = 0.20

		D.agc_fast_attack = 0.70
		D.agc_slow_decay = 0.000090

		D.pll_locked_inertia = 0.74
		D.pll_searching_inertia = 0.50

	case 'B', 'D': // 'D' for backward compatibility.

		D.profile = 'B'

		/* Rather than separate mark and space filters, mix with */
		/* the center frequency and look for the rate of change */
		/* of the phase, i.e. an FM discriminator. */

		D.use_prefilter = true

		if baud > 600 {
			D.prefilter_baud = 0.19
			D.pre_filter_len_sym = 8.163
			D.pre_window = BP_WINDOW_TRUNCATED
		} else {
			D.prefilter_baud = 0.87
			D.pre_filter_len_sym = 1.857
			D.pre_window = BP_WINDOW_COSINE
		}

		// Local oscillator for the center frequency.

		D.u.afsk.c_osc_delta = uint32(math.Round(math.Pow(2., 32.) * 0.5 * float64(mark_freq+space_freq) / float64(samples_per_sec)))

		D.u.afsk.use_rrc = true
		D.u.afsk.rrc_width_sym = 2.00
		D.u.afsk.rrc_rolloff = 0.40

		// For scaling phase shift into normalized -1 to +1 range for mark and space.
		D.u.afsk.normalize_rpsam = 1.0 / (0.5 * math.Abs(float64(mark_freq-space_freq)) * 2 * math.Pi / float64(samples_per_sec))

		// The 'B' demodulator does not use AGC but the level reporting
		// still needs "quick" and "sluggish" values derived from these.
		D.agc_fast_attack = 0.70
		D.agc_slow_decay = 0.000090

		D.pll_locked_inertia = 0.74
		D.pll_searching_inertia = 0.50

		D.alevel_mark_peak = -1 // Disable received signal (m/s) display.
		D.alevel_space_peak = -1

	default:
		dw_log.Error("Invalid AFSK demodulator profile.", "profile", string(rune(profile)))
		D.profile = 'A'
		demod_afsk_init(samples_per_sec, baud, mark_freq, space_freq, 'A', D)
		return
	}

	/*
	 * Calculate constants used for timing.
	 * The audio sample rate must be at least a few times the data rate.
	 */
	D.pll_step_per_sample = int32(math.Round(TICKS_PER_PLL_CYCLE * float64(baud) / float64(samples_per_sec)))

	/*
	 * Optionally apply a bandpass ("pre") filter to attenuate
	 * frequencies outside the range of interest.
	 */
	if D.use_prefilter {

		// Odd number is a little better.
		D.pre_filter_taps = int(D.pre_filter_len_sym*float64(samples_per_sec)/float64(baud)) | 1

		if D.pre_filter_taps > MAX_FILTER_SIZE {
			dw_log.Warn("Calculated pre filter size is too large.  "+
				"Decrease the audio sample rate or increase the decimation factor.",
				"taps", D.pre_filter_taps)
			D.pre_filter_taps = (MAX_FILTER_SIZE - 1) | 1
		}

		var f1 = float64(min(mark_freq, space_freq)) - D.prefilter_baud*float64(baud)
		var f2 = float64(max(mark_freq, space_freq)) + D.prefilter_baud*float64(baud)
		f1 /= float64(samples_per_sec)
		f2 /= float64(samples_per_sec)

		gen_bandpass(f1, f2, D.pre_filter[:], D.pre_filter_taps, D.pre_window)
	}

	/*
	 * Now the lowpass filter, from the RRC function.
	 */
	D.lp_filter_taps = int(D.u.afsk.rrc_width_sym*float64(samples_per_sec)/float64(baud)) | 1

	if D.lp_filter_taps > MAX_FILTER_SIZE {
		dw_log.Warn("Calculated RRC low pass filter size is too large.", "taps", D.lp_filter_taps)
		D.lp_filter_taps = (MAX_FILTER_SIZE - 1) | 1
	}

	gen_rrc_lowpass(D.lp_filter[:], D.lp_filter_taps, D.u.afsk.rrc_rolloff, float64(samples_per_sec)/float64(baud))
}

/* Space gain for each slicer, logarithmically spaced between MIN_G and MAX_G. */

func (D *demodulator_state_s) slice_gain(slice int) float64 {
	var step = math.Pow(10.0, math.Log10(MAX_G/MIN_G)/(MAX_SLICERS-1))
	return MIN_G * math.Pow(step, float64(slice))
}

// Automatic Gain Control.
//
// The first step is to create an envelope for the peak and valley of the
// mark or space amplitude.  We need to keep track of the valley because it
// does not go down to zero when the tone is not present.
//
// An IIR filter with fast attack and slow decay which only considers the past.
// Result should settle down to 1 unit peak to peak, i.e. -0.5 to +0.5.

func agc(in float64, fast_attack float64, slow_decay float64, inPeak float64, inValley float64) (float64, float64, float64) {

	var outPeak, outValley float64

	if in >= inPeak {
		outPeak = in*fast_attack + inPeak*(1.0-fast_attack)
	} else {
		outPeak = in*slow_decay + inPeak*(1.0-slow_decay)
	}

	if in <= inValley {
		outValley = in*fast_attack + inValley*(1.0-fast_attack)
	} else {
		outValley = in*slow_decay + inValley*(1.0-slow_decay)
	}

	if outPeak > outValley {
		return outPeak, outValley, (in - 0.5*(outPeak+outValley)) / (outPeak - outValley)
	}
	return outPeak, outValley, 0.0
}

/*-------------------------------------------------------------------
 *
 * Name:        demod_afsk_process_sample
 *
 * Purpose:     (1) Demodulate the AFSK signal.
 *		(2) Recover clock and data.
 *
 * Inputs:	sam	- One sample of audio, in range -32768 .. 32767.
 *
 * Description:	A digital phase locked loop (PLL) recovers the symbol
 *		clock and picks out data bits at the proper rate.  For
 *		each recovered data bit, hdlc_rec_bit is called.
 *
 *		Due to mismatching pre-emphasis and de-emphasis, the two
 *		tones often have greatly different amplitudes, so either
 *		automatic gain control scales each before comparing, or
 *		multiple slicer thresholds run in parallel.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) demod_afsk_process_sample(channel int, subchan int, sam int, D *demodulator_state_s) {

	/* Scale to nice number. */

	var fsam = float64(sam) / 16384.0

	switch D.profile {

	default:
		fallthrough
	case 'A':

		if D.use_prefilter {
			push_sample(fsam, D.raw_cb[:], D.pre_filter_taps)
			fsam = convolve(D.raw_cb[:], D.pre_filter[:], D.pre_filter_taps)
		}

		push_sample(fsam*fcos256(D.u.afsk.m_osc_phase), D.u.afsk.m_I_raw[:], D.lp_filter_taps)
		push_sample(fsam*fsin256(D.u.afsk.m_osc_phase), D.u.afsk.m_Q_raw[:], D.lp_filter_taps)
		D.u.afsk.m_osc_phase += D.u.afsk.m_osc_delta

		push_sample(fsam*fcos256(D.u.afsk.s_osc_phase), D.u.afsk.s_I_raw[:], D.lp_filter_taps)
		push_sample(fsam*fsin256(D.u.afsk.s_osc_phase), D.u.afsk.s_Q_raw[:], D.lp_filter_taps)
		D.u.afsk.s_osc_phase += D.u.afsk.s_osc_delta

		var m_I = convolve(D.u.afsk.m_I_raw[:], D.lp_filter[:], D.lp_filter_taps)
		var m_Q = convolve(D.u.afsk.m_Q_raw[:], D.lp_filter[:], D.lp_filter_taps)
		var m_amp = math.Hypot(m_I, m_Q)

		var s_I = convolve(D.u.afsk.s_I_raw[:], D.lp_filter[:], D.lp_filter_taps)
		var s_Q = convolve(D.u.afsk.s_Q_raw[:], D.lp_filter[:], D.lp_filter_taps)
		var s_amp = math.Hypot(s_I, s_Q)

		/*
		 * Capture the mark and space peak amplitudes for display.
		 * Fast attack and slow decay gives an idea of the overall amplitude.
		 */
		if m_amp >= D.alevel_mark_peak {
			D.alevel_mark_peak = m_amp*D.quick_attack + D.alevel_mark_peak*(1.0-D.quick_attack)
		} else {
			D.alevel_mark_peak = m_amp*D.sluggish_decay + D.alevel_mark_peak*(1.0-D.sluggish_decay)
		}

		if s_amp >= D.alevel_space_peak {
			D.alevel_space_peak = s_amp*D.quick_attack + D.alevel_space_peak*(1.0-D.quick_attack)
		} else {
			D.alevel_space_peak = s_amp*D.sluggish_decay + D.alevel_space_peak*(1.0-D.sluggish_decay)
		}

		if D.num_slicers <= 1 {

			// Which tone is stronger?  Simple with an ideal signal, but
			// we don't see too many of those, so normalize both with AGC
			// before comparing.

			var m_norm, s_norm float64
			D.m_peak, D.m_valley, m_norm = agc(m_amp, D.agc_fast_attack, D.agc_slow_decay, D.m_peak, D.m_valley)
			D.s_peak, D.s_valley, s_norm = agc(s_amp, D.agc_fast_attack, D.agc_slow_decay, D.s_peak, D.s_valley)

			// The normalized values are around -0.5 to +0.5 so the
			// difference is around -1 to +1.  nudge_pll_afsk takes an
			// amplitude argument but does not use it; no confidence
			// score is assigned to the symbol.

			var demod_out = m_norm - s_norm
			rx.nudge_pll_afsk(channel, subchan, 0, demod_out, D, 1.0)

		} else {
			// Multiple slice case.  Rather than trying to find the best
			// threshold location, multiple slicer thresholds run in
			// parallel.  The envelope is still tracked and passed to
			// nudge_pll_afsk, which does not use it.

			D.m_peak, D.m_valley, _ = agc(m_amp, D.agc_fast_attack, D.agc_slow_decay, D.m_peak, D.m_valley)
			D.s_peak, D.s_valley, _ = agc(s_amp, D.agc_fast_attack, D.agc_slow_decay, D.s_peak, D.s_valley)

			for slice := 0; slice < D.num_slicers; slice++ {
				var demod_out = m_amp - s_amp*D.slice_gain(slice)
				var amp = 0.5 * (D.m_peak - D.m_valley + (D.s_peak-D.s_valley)*D.slice_gain(slice))
				if amp < 0.0000001 {
					amp = 1 // avoid divide by zero with no signal.
				}
				rx.nudge_pll_afsk(channel, subchan, slice, demod_out, D, amp)
			}
		}

	case 'B':

		// Convert frequency to a value proportional to frequency.

		if D.use_prefilter {
			push_sample(fsam, D.raw_cb[:], D.pre_filter_taps)
			fsam = convolve(D.raw_cb[:], D.pre_filter[:], D.pre_filter_taps)
		}

		push_sample(fsam*fcos256(D.u.afsk.c_osc_phase), D.u.afsk.c_I_raw[:], D.lp_filter_taps)
		push_sample(fsam*fsin256(D.u.afsk.c_osc_phase), D.u.afsk.c_Q_raw[:], D.lp_filter_taps)
		D.u.afsk.c_osc_phase += D.u.afsk.c_osc_delta

		var c_I = convolve(D.u.afsk.c_I_raw[:], D.lp_filter[:], D.lp_filter_taps)
		var c_Q = convolve(D.u.afsk.c_Q_raw[:], D.lp_filter[:], D.lp_filter_taps)

		var phase = math.Atan2(c_Q, c_I)
		var rate = phase - D.u.afsk.prev_phase
		if rate > math.Pi {
			rate -= 2 * math.Pi
		} else if rate < -math.Pi {
			rate += 2 * math.Pi
		}
		D.u.afsk.prev_phase = phase

		// Rate is radians per audio sample interval.
		// Scale that into -1 to +1 for the expected tones.

		var norm_rate = rate * D.u.afsk.normalize_rpsam

		if D.num_slicers <= 1 {
			rx.nudge_pll_afsk(channel, subchan, 0, norm_rate, D, 1.0)
		} else {
			// Useful for HF SSB where a tuning error shifts the
			// frequency; multiple slicing points compensate for
			// differences in transmit/receive frequencies.
			for slice := 0; slice < D.num_slicers; slice++ {
				var offset = -0.5 + float64(slice)*(1./float64(D.num_slicers-1))
				rx.nudge_pll_afsk(channel, subchan, slice, norm_rate+offset, D, 1.0)
			}
		}
	}
}

/*
 * Finally, a PLL is used to sample near the centers of the data bits.
 *
 * D.slicer[slice].data_clock_pll is a SIGNED 32 bit variable.
 * When it overflows from a large positive value to a negative value, we
 * sample a data bit from the demodulated signal.
 *
 * Ideally, the demodulated signal transitions should be near zero and we
 * sample mid way between the transitions.
 *
 * Transitions nudge the DPLL phase toward the incoming signal.  Be a
 * little more aggressive about adjusting the phase when searching for a
 * signal and don't change it as much when locked on.
 */

func (rx *rx_s) nudge_pll_afsk(channel int, subchan int, slice int, demod_out float64, D *demodulator_state_s, amplitude float64) {

	var S = &D.slicer[slice]

	S.prev_d_c_pll = S.data_clock_pll

	// Perform the add as unsigned to avoid signed overflow error.
	S.data_clock_pll = int32(uint32(S.data_clock_pll) + uint32(D.pll_step_per_sample))

	if S.data_clock_pll < 0 && S.prev_d_c_pll > 0 {

		/* Overflow - this is where we sample. */

		rx.hdlc_rec_bit(channel, subchan, slice, bool2int(demod_out > 0), false)
		rx.pll_dcd_each_symbol2(DCD_CONFIG_AFSK, D, channel, subchan, slice)
	}

	var demod_data = demod_out > 0
	if demod_data != S.prev_demod_data {

		pll_dcd_signal_transition2(DCD_CONFIG_AFSK, D, slice, S.data_clock_pll)

		if S.data_detect {
			S.data_clock_pll = int32(float64(S.data_clock_pll) * D.pll_locked_inertia)
		} else {
			S.data_clock_pll = int32(float64(S.data_clock_pll) * D.pll_searching_inertia)
		}
	}

	S.prev_demod_data = demod_data
}
