package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Common entry point for multiple types of demodulators.
 *
 * Input:	Audio samples from either a file or the sound device.
 *
 * Outputs:	Calls hdlc_rec_bit for each bit demodulated.
 *
 *---------------------------------------------------------------*/

import (
	"strings"
	"unicode"
)

/*------------------------------------------------------------------
 *
 * Name:        demod_init
 *
 * Purpose:     Initialize the demodulator(s) for all channels using
 *		the configuration.  The profile string is normalized
 *		here: at least one letter with a suitable default, upper
 *		case only, any plus at the end.
 *
 *----------------------------------------------------------------*/

func (rx *rx_s) demod_init() {

	var pa = rx.audio_config

	for channel := 0; channel < MAX_RADIO_CHANS; channel++ {

		if pa.chan_medium[channel] != MEDIUM_RADIO {
			continue
		}

		pa.achan[channel].num_subchan = 1
		pa.achan[channel].num_slicers = 1

		switch pa.achan[channel].modem_type {

		case MODEM_OFF:

		case MODEM_AFSK:

			/*
			 * Tear apart the profile and put it back together in a
			 * normalized form.
			 */
			var num_letters = 0
			var just_letters strings.Builder
			var have_plus = 0
			var profileStr = pa.achan[channel].profiles
			for i, p := range profileStr {
				switch {
				case unicode.IsLetter(p):
					just_letters.WriteRune(unicode.ToUpper(p))
					num_letters++
				case p == '+':
					have_plus = 1
					if i+1 != len(profileStr) {
						dw_log.Error("The + option must appear at end of demodulator types.",
							"chan", channel, "profiles", profileStr)
					}
				case p == '-':
					have_plus = -1
					if i+1 != len(profileStr) {
						dw_log.Error("The - option must appear at end of demodulator types.",
							"chan", channel, "profiles", profileStr)
					}
				default:
					dw_log.Error("Demodulator types can contain only letters and + - characters.",
						"chan", channel, "profiles", profileStr)
				}
			}

			/*
			 * Pick a good default demodulator if none specified.
			 */
			if num_letters == 0 {
				just_letters.WriteByte('A')
				num_letters = 1
				if have_plus != -1 {
					have_plus = 1 // Default on if not explicitly turned off.
				}
			}

			/*
			 * Number of filter taps is proportional to number of audio
			 * samples in a symbol duration.  These get extremely large
			 * for low speeds, e.g. 300 baud, so increase the decimation.
			 */
			if pa.achan[channel].decimate == 0 &&
				pa.adev[ACHAN2ADEV(channel)].samples_per_sec > 40000 &&
				pa.achan[channel].baud < 600 {
				pa.achan[channel].decimate = 3
			}

			if have_plus == -1 {
				have_plus = 0
			}

			pa.achan[channel].profiles = just_letters.String()
			if have_plus != 0 {
				pa.achan[channel].profiles += "+"
			}

			/*
			 * Can use only one of: multiple letters, or the + multi-slicer.
			 */
			if have_plus != 0 && num_letters > 1 {
				dw_log.Error("Multiple demodulator types can't be combined with the + option.",
					"chan", channel)
				pa.achan[channel].profiles = just_letters.String()[:1] + "+"
				num_letters = 1
			}

			if pa.achan[channel].decimate == 0 {
				pa.achan[channel].decimate = 1
				if strings.Contains(just_letters.String(), "B") &&
					pa.adev[ACHAN2ADEV(channel)].samples_per_sec > 40000 {
					pa.achan[channel].decimate = 3
				}
			}

			dw_log.Debug("Channel modem configuration.",
				"chan", channel, "baud", pa.achan[channel].baud,
				"mark", pa.achan[channel].mark_freq, "space", pa.achan[channel].space_freq,
				"profiles", pa.achan[channel].profiles,
				"sample_rate", pa.adev[ACHAN2ADEV(channel)].samples_per_sec,
				"decimate", pa.achan[channel].decimate)

			pa.achan[channel].num_subchan = num_letters

			for d := 0; d < pa.achan[channel].num_subchan; d++ {

				var D = new(demodulator_state_s)
				rx.demod_st[channel][d] = D

				demod_afsk_init(pa.adev[ACHAN2ADEV(channel)].samples_per_sec/pa.achan[channel].decimate,
					pa.achan[channel].baud,
					pa.achan[channel].mark_freq,
					pa.achan[channel].space_freq,
					pa.achan[channel].profiles[d],
					D)

				if have_plus != 0 {
					/* One demodulator feeds multiple slicers, */
					/* each its own HDLC decoder. */
					pa.achan[channel].num_slicers = MAX_SLICERS
					D.num_slicers = MAX_SLICERS
				}

				/* For signal level reporting, we want a longer term view. */

				D.quick_attack = D.agc_fast_attack * 0.2
				D.sluggish_decay = D.agc_slow_decay * 0.2
			}

		default:
			/*
			 * MODEM_BASEBAND or MODEM_SCRAMBLE.
			 */
			if pa.achan[channel].decimate == 0 {
				pa.achan[channel].decimate = 1
			}
			if pa.achan[channel].upsample == 0 {
				// Lower sample-rate-to-baud ratios benefit from upsampling.
				if pa.adev[ACHAN2ADEV(channel)].samples_per_sec/pa.achan[channel].baud < 8 {
					pa.achan[channel].upsample = 2
				} else {
					pa.achan[channel].upsample = 1
				}
			}

			dw_log.Debug("Channel modem configuration.",
				"chan", channel, "baud", pa.achan[channel].baud, "modem", "scrambled baseband",
				"sample_rate", pa.adev[ACHAN2ADEV(channel)].samples_per_sec,
				"upsample", pa.achan[channel].upsample)

			var D = new(demodulator_state_s)
			rx.demod_st[channel][0] = D

			demod_9600_init(pa.achan[channel].modem_type,
				pa.adev[ACHAN2ADEV(channel)].samples_per_sec/pa.achan[channel].decimate,
				pa.achan[channel].upsample,
				pa.achan[channel].baud,
				D)

			if strings.HasSuffix(pa.achan[channel].profiles, "+") {
				pa.achan[channel].num_slicers = MAX_SLICERS
				D.num_slicers = MAX_SLICERS
			}

			D.quick_attack = D.agc_fast_attack * 0.2
			D.sluggish_decay = D.agc_slow_decay * 0.2
		}
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        demod_get_sample
 *
 * Purpose:	Obtain the next signed 16 bit audio sample from a byte
 *		source: one byte 0..255 for 8 bit audio or two bytes
 *		little endian for 16 bit.
 *
 * Returns:	Sample in range -32768 .. +32767, or FSK_READ_ERR at
 *		end of stream.
 *
 *--------------------------------------------------------------------*/

const FSK_READ_ERR = 256 * 256

func demod_get_sample(src audio_byte_source, bits_per_sample int) int {

	if bits_per_sample == 8 {
		var x1 = src.audio_get()
		if x1 < 0 {
			return FSK_READ_ERR
		}
		/* Scale 0..255 into -32k..+32k */
		return int(int16(x1-128) * 256)
	}

	var x1 = src.audio_get() /* lower byte first */
	if x1 < 0 {
		return FSK_READ_ERR
	}
	var x2 = src.audio_get()
	if x2 < 0 {
		return FSK_READ_ERR
	}
	return int(int16(uint16(x2)<<8 | uint16(x1)))
}

/*-------------------------------------------------------------------
 *
 * Name:        demod_process_sample
 *
 * Purpose:     Feed one audio sample into the demodulator for one
 *		subchannel, with optional decimation to reduce the
 *		CPU load.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) demod_process_sample(channel int, subchan int, sam int) {

	var D = rx.demod_st[channel][subchan]

	var fsam = float64(sam) / 16384.0

	/*
	 * Accumulate a measure of the input signal level.
	 * Same as the later AGC without the normalization step but decay
	 * is substantially slower to get a longer range idea of the
	 * received audio.
	 */
	if fsam >= D.alevel_rec_peak {
		D.alevel_rec_peak = fsam*D.quick_attack + D.alevel_rec_peak*(1.0-D.quick_attack)
	} else {
		D.alevel_rec_peak = fsam*D.sluggish_decay + D.alevel_rec_peak*(1.0-D.sluggish_decay)
	}

	if fsam <= D.alevel_rec_valley {
		D.alevel_rec_valley = fsam*D.quick_attack + D.alevel_rec_valley*(1.0-D.quick_attack)
	} else {
		D.alevel_rec_valley = fsam*D.sluggish_decay + D.alevel_rec_valley*(1.0-D.sluggish_decay)
	}

	/*
	 * Select decoder based on modulation type.
	 */
	switch rx.audio_config.achan[channel].modem_type {

	case MODEM_OFF:

	case MODEM_AFSK:

		var decimate = rx.audio_config.achan[channel].decimate
		if decimate > 1 {
			rx.sample_sum[channel][subchan] += sam
			rx.sample_count[channel][subchan]++
			if rx.sample_count[channel][subchan] >= decimate {
				rx.demod_afsk_process_sample(channel, subchan, rx.sample_sum[channel][subchan]/decimate, D)
				rx.sample_sum[channel][subchan] = 0
				rx.sample_count[channel][subchan] = 0
			}
		} else {
			rx.demod_afsk_process_sample(channel, subchan, sam, D)
		}

	default:
		/* MODEM_BASEBAND, MODEM_SCRAMBLE */

		rx.demod_9600_process_sample(channel, sam, rx.audio_config.achan[channel].upsample, D)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        demod_get_audio_level
 *
 * Purpose:	Audio level for the heard line.  Resulting scale is 0
 *		to almost 100; cranking up the input level produces no
 *		more than 97 or 98.
 *
 *--------------------------------------------------------------------*/

func (rx *rx_s) demod_get_audio_level(channel int, subchan int) alevel_t {

	/* We have to consider two different cases here: */
	/* N demodulators, each with own slicer and HDLC decoder, */
	/* or a single demodulator, multiple slicers. */

	if rx.demod_st[channel][0].num_slicers > 1 {
		subchan = 0
	}

	var D = rx.demod_st[channel][subchan]
	var alevel alevel_t

	// Take half of peak-to-peak for received audio level.

	alevel.rec = int((D.alevel_rec_peak-D.alevel_rec_valley)*50.0 + 0.5)

	switch rx.audio_config.achan[channel].modem_type {
	case MODEM_AFSK:
		/* For AFSK, we have mark and space amplitudes. */
		if D.alevel_mark_peak < 0 || D.alevel_space_peak < 0 {
			alevel.mark = -1
			alevel.space = -1
		} else {
			alevel.mark = int(D.alevel_mark_peak*100.0 + 0.5)
			alevel.space = int(D.alevel_space_peak*100.0 + 0.5)
		}
	default:
		/* Display the + and - peaks.  Normally we'd expect them to be */
		/* about the same.  However, with SDR, or other DC coupling, */
		/* we could have an offset. */
		alevel.mark = int(D.alevel_mark_peak*200.0 + 0.5)
		alevel.space = int(D.alevel_space_peak*200.0 - 0.5)
	}

	return alevel
}
