package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Generate audio for morse code, used by the transmit
 *		test harness.
 *
 *------------------------------------------------------------------*/

import (
	"math"
	"strings"
)

const MORSE_TONE = 800

var morse_table = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'-': "-....-", '/': "-..-.", '.': ".-.-.-", ',': "--..--", '?': "..--..",
}

/*
 * Dot length in milliseconds for a given speed in words per minute,
 * from the standard PARIS timing.
 */

func morse_dot_ms(wpm int) int {
	if wpm <= 0 {
		wpm = 10
	}
	return 1200 / wpm
}

/*------------------------------------------------------------------
 *
 * Name:	morse_send
 *
 * Purpose:	Send a text string as morse code tones.
 *
 * Returns:	Total number of milliseconds of audio generated.
 *
 *------------------------------------------------------------------*/

func (tx *tx_s) morse_send(channel int, str string, wpm int, txdelay int, txtail int) int {

	var dot = morse_dot_ms(wpm)
	var total = txdelay

	tx.gen_tone_put_quiet_ms(channel, txdelay)

	for _, ch := range strings.ToUpper(str) {
		if ch == ' ' {
			tx.gen_tone_put_quiet_ms(channel, 4*dot) // plus 3 after previous symbol.
			total += 4 * dot
			continue
		}
		var symbols, ok = morse_table[ch]
		if !ok {
			continue
		}
		for i, s := range symbols {
			if i > 0 {
				tx.gen_tone_put_quiet_ms(channel, dot)
				total += dot
			}
			var dur = dot
			if s == '-' {
				dur = 3 * dot
			}
			tx.morse_tone_ms(channel, dur)
			total += dur
		}
		tx.gen_tone_put_quiet_ms(channel, 3*dot)
		total += 3 * dot
	}

	tx.gen_tone_put_quiet_ms(channel, txtail)
	total += txtail

	tx.audio_flush(ACHAN2ADEV(channel))
	return total
}

func (tx *tx_s) morse_tone_ms(channel int, time_ms int) {

	var a = ACHAN2ADEV(channel)
	var sps = tx.audio_config.adev[a].samples_per_sec
	var nsamples = int(float64(time_ms)*float64(sps)/1000. + 0.5)

	var phase_step = uint32(MORSE_TONE*TICKS_PER_CYCLE/float64(sps) + 0.5)

	for j := 0; j < nsamples; j++ {
		tx.tone_phase[channel] += phase_step
		var sam = int(tx.sine_table[(tx.tone_phase[channel]>>24)&0xff])

		/* Shape the leading and trailing edges a little to reduce */
		/* key clicks. */
		var ramp = sps / 200 // 5 ms
		if j < ramp {
			sam = int(float64(sam) * (1 - math.Cos(float64(j)/float64(ramp)*math.Pi)) / 2)
		} else if nsamples-j < ramp {
			sam = int(float64(sam) * (1 - math.Cos(float64(nsamples-j)/float64(ramp)*math.Pi)) / 2)
		}

		tx.gen_tone_put_sample(channel, a, sam)
	}
}
