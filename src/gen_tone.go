package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Convert bits to AFSK tones or the baseband waveform
 *		for transmission.
 *
 * Description:	A phase accumulator steps through a sine table at the
 *		appropriate rate for the mark or space tone.  For G3RUH,
 *		rather than generating a square wave and low pass
 *		filtering, generate the waveform directly; alternating
 *		bits come out as a sine wave of baud/2 Hz.
 *
 *------------------------------------------------------------------*/

import (
	"math"
)

const TICKS_PER_CYCLE = 256.0 * 256.0 * 256.0 * 256.0

/*
 * The byte sink where generated audio goes:  a .wav file being
 * written, a sound device, or a test buffer.
 */

type audio_byte_sink interface {
	audio_put(a int, b byte)
	audio_flush(a int)
}

type tx_s struct {
	audio_config *audio_s
	out          audio_byte_sink

	amp16bit int /* For 9600 baud. */

	ticks_per_sample [MAX_RADIO_CHANS]int
	ticks_per_bit    [MAX_RADIO_CHANS]int

	f1_change_per_sample [MAX_RADIO_CHANS]uint32
	f2_change_per_sample [MAX_RADIO_CHANS]uint32

	sine_table [256]int16

	tone_phase [MAX_RADIO_CHANS]uint32 /* Phase accumulator for tone generation. */

	bit_len_acc [MAX_RADIO_CHANS]int /* To accumulate fractional samples per bit. */

	lfsr [MAX_RADIO_CHANS]int /* Shift register for scrambler. */

	prev_dat [MAX_RADIO_CHANS]int /* Previous data bit, for the baseband waveform. */
}

/*------------------------------------------------------------------
 *
 * Name:        gen_tone_init
 *
 * Purpose:     Initialize the tone generator.
 *
 * Inputs:      amp	- Signal amplitude on scale of 0 .. 100.
 *
 *		out	- Byte sink for the generated audio.
 *
 *----------------------------------------------------------------*/

func gen_tone_init(audio_config_p *audio_s, amp int, out audio_byte_sink) *tx_s {

	var tx = &tx_s{
		audio_config: audio_config_p,
		out:          out,
		amp16bit:     32767 * amp / 100,
	}

	for channel := 0; channel < MAX_RADIO_CHANS; channel++ {

		if audio_config_p.chan_medium[channel] != MEDIUM_RADIO {
			continue
		}

		var a = ACHAN2ADEV(channel)

		tx.ticks_per_sample[channel] = int(TICKS_PER_CYCLE/float64(audio_config_p.adev[a].samples_per_sec) + 0.5)

		switch audio_config_p.achan[channel].modem_type {

		case MODEM_BASEBAND, MODEM_SCRAMBLE:

			// Tone is half baud.
			tx.ticks_per_bit[channel] = int(TICKS_PER_CYCLE/float64(audio_config_p.achan[channel].baud) + 0.5)
			tx.f1_change_per_sample[channel] = uint32(float64(audio_config_p.achan[channel].baud)*0.5*TICKS_PER_CYCLE/float64(audio_config_p.adev[a].samples_per_sec) + 0.5)

		default: // AFSK

			tx.ticks_per_bit[channel] = int(TICKS_PER_CYCLE/float64(audio_config_p.achan[channel].baud) + 0.5)
			tx.f1_change_per_sample[channel] = uint32(float64(audio_config_p.achan[channel].mark_freq)*TICKS_PER_CYCLE/float64(audio_config_p.adev[a].samples_per_sec) + 0.5)
			tx.f2_change_per_sample[channel] = uint32(float64(audio_config_p.achan[channel].space_freq)*TICKS_PER_CYCLE/float64(audio_config_p.adev[a].samples_per_sec) + 0.5)
		}
	}

	for j := 0; j < 256; j++ {

		var s = int(math.Sin(float64(j)/256.0*(2.0*math.Pi)) * 32767 * float64(amp) / 100.0)

		/* 16 bit sound sample must fit in range of -32768 .. +32767. */

		if s < -32768 {
			dw_log.Error("gen_tone_init: Excessive amplitude is being clipped.")
			s = -32768
		} else if s > 32767 {
			dw_log.Error("gen_tone_init: Excessive amplitude is being clipped.")
			s = 32767
		}
		tx.sine_table[j] = int16(s)
	}

	return tx
}

/*-------------------------------------------------------------------
 *
 * Name:        tone_gen_put_bit
 *
 * Purpose:     Generate tone of proper duration for one data bit.
 *
 * Inputs:      channel	- Audio channel, 0 = first.
 *
 *		dat	- 0 for space, 1 for mark.
 *
 *--------------------------------------------------------------------*/

func (tx *tx_s) tone_gen_put_bit(channel int, dat int) {

	var a = ACHAN2ADEV(channel)

	if tx.audio_config.chan_medium[channel] != MEDIUM_RADIO {
		dw_log.Error("Invalid channel for tone generation.", "chan", channel)
		return
	}

	if tx.audio_config.achan[channel].modem_type == MODEM_SCRAMBLE {
		var x = (dat ^ (tx.lfsr[channel] >> 16) ^ (tx.lfsr[channel] >> 11)) & 1
		tx.lfsr[channel] = (tx.lfsr[channel] << 1) | (x & 1)
		dat = x
	}

	for { /* until enough audio samples for this symbol. */

		var sam int

		switch tx.audio_config.achan[channel].modem_type {

		case MODEM_AFSK:

			// A data '1' is the mark tone.

			var change = tx.f2_change_per_sample[channel]
			if dat > 0 {
				change = tx.f1_change_per_sample[channel]
			}
			tx.tone_phase[channel] += change
			sam = int(tx.sine_table[(tx.tone_phase[channel]>>24)&0xff])
			tx.gen_tone_put_sample(channel, a, sam)

		case MODEM_BASEBAND, MODEM_SCRAMBLE:

			if dat != tx.prev_dat[channel] {
				tx.tone_phase[channel] += tx.f1_change_per_sample[channel]
			} else {
				if tx.tone_phase[channel]&0x80000000 != 0 {
					tx.tone_phase[channel] = 0xc0000000 // 270 degrees.
				} else {
					tx.tone_phase[channel] = 0x40000000 // 90 degrees.
				}
			}
			sam = int(tx.sine_table[(tx.tone_phase[channel]>>24)&0xff])
			tx.gen_tone_put_sample(channel, a, sam)

		default:
			dw_log.Error("Internal error: tone_gen_put_bit unexpected modem type.",
				"modem_type", int(tx.audio_config.achan[channel].modem_type))
			return
		}

		/* Enough for the bit time? */

		tx.bit_len_acc[channel] += tx.ticks_per_sample[channel]

		if tx.bit_len_acc[channel] >= tx.ticks_per_bit[channel] {
			break
		}
	}

	tx.bit_len_acc[channel] -= tx.ticks_per_bit[channel]

	tx.prev_dat[channel] = dat
}

/*
 * Ship out an audio sample.
 * 16 bit is signed, little endian, range -32768 .. +32767.
 * 8 bit is unsigned, range 0 .. 255.
 * For stereo the other half gets silence.
 */

func (tx *tx_s) gen_tone_put_sample(channel int, a int, sam int) {

	if sam < -32767 {
		dw_log.Warn("Audio sample clipped.", "sam", sam)
		sam = -32767
	} else if sam > 32767 {
		dw_log.Warn("Audio sample clipped.", "sam", sam)
		sam = 32767
	}

	if tx.audio_config.adev[a].num_channels == 1 {

		/* Mono */

		if tx.audio_config.adev[a].bits_per_sample == 8 {
			tx.out.audio_put(a, byte((sam+32768)>>8))
		} else {
			tx.out.audio_put(a, byte(sam&0xff))
			tx.out.audio_put(a, byte((sam>>8)&0xff))
		}
	} else if channel == ADEVFIRSTCHAN(a) {

		/* Stereo, left channel. */

		if tx.audio_config.adev[a].bits_per_sample == 8 {
			tx.out.audio_put(a, byte((sam+32768)>>8))
			tx.out.audio_put(a, 128)
		} else {
			tx.out.audio_put(a, byte(sam&0xff))
			tx.out.audio_put(a, byte((sam>>8)&0xff))
			tx.out.audio_put(a, 0)
			tx.out.audio_put(a, 0)
		}
	} else {

		/* Stereo, right channel. */

		if tx.audio_config.adev[a].bits_per_sample == 8 {
			tx.out.audio_put(a, 128)
			tx.out.audio_put(a, byte((sam+32768)>>8))
		} else {
			tx.out.audio_put(a, 0)
			tx.out.audio_put(a, 0)
			tx.out.audio_put(a, byte(sam&0xff))
			tx.out.audio_put(a, byte((sam>>8)&0xff))
		}
	}
}

func (tx *tx_s) gen_tone_put_quiet_ms(channel int, time_ms int) {

	var a = ACHAN2ADEV(channel)

	var nsamples = int(float64(time_ms)*float64(tx.audio_config.adev[a].samples_per_sec)/1000. + 0.5)

	for j := 0; j < nsamples; j++ {
		tx.gen_tone_put_sample(channel, a, 0)
	}

	// Avoid abrupt change when it starts up again.
	tx.tone_phase[channel] = 0
}

func (tx *tx_s) audio_flush(a int) {
	tx.out.audio_flush(a)
}
