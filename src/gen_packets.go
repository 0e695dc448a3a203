package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Test fixture for the transmit path:  generate a .wav
 *		audio file from AX.25 frames.
 *
 * Description:	Frames are read from standard input in the usual
 *		monitor format, one per line.  When none are supplied a
 *		few built-in test frames are used.  The -n option
 *		generates a sweep of frames with increasing noise which
 *		is handy for comparing demodulator performance.
 *
 * Examples:	gen_packets -o x.wav
 *		gen_packets -B 300 -o x3.wav
 *		gen_packets -B 9600 -n 100 -o x9.wav
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

/*
 * Optionally add noise to the generated audio, for the -n sweep.
 * Works on the byte stream so it slots in between the tone generator
 * and the .wav writer.
 */

type noisy_sink_s struct {
	out             audio_byte_sink
	bits_per_sample int
	noise_level     float64 /* Fraction of full scale. */

	lsb  int
	have bool
}

func (s *noisy_sink_s) audio_put(a int, b byte) {

	if s.noise_level == 0 {
		s.out.audio_put(a, b)
		return
	}

	if s.bits_per_sample == 8 {
		var sam = (int(b) - 128) * 256
		sam += int(rand.Float64() * s.noise_level * 65536 * 2)
		sam = max(-32767, min(32767, sam))
		s.out.audio_put(a, byte((sam+32768)>>8))
		return
	}

	if !s.have {
		s.lsb = int(b)
		s.have = true
		return
	}
	s.have = false

	var sam = int(int16(uint16(s.lsb) | uint16(b)<<8))
	sam += int((rand.Float64() - 0.5) * s.noise_level * 65536 * 2)
	sam = max(-32767, min(32767, sam))
	s.out.audio_put(a, byte(sam&0xff))
	s.out.audio_put(a, byte((sam>>8)&0xff))
}

func (s *noisy_sink_s) audio_flush(a int) {
	s.out.audio_flush(a)
}

func GenPacketsMain() {

	var amplitude = pflag.IntP("amplitude", "a", 50, "Signal amplitude in range of 0 - 200%.")
	var baudB = pflag.IntP("Bitrate", "B", DEFAULT_BAUD, "Bits/second for data.  Proper modem automatically selected for speed.")
	var baudb = pflag.IntP("bitrate", "b", 0, "Bits/second for data.  Same as -B.")
	var g3ruh = pflag.BoolP("g3ruh", "g", false, "Scrambled baseband rather than AFSK.")
	var markFreq = pflag.IntP("mark", "m", 0, "Mark frequency in Hz.")
	var spaceFreq = pflag.IntP("space", "s", 0, "Space frequency in Hz.")
	var sampleRate = pflag.IntP("rate", "r", DEFAULT_SAMPLES_PER_SEC, "Audio sample rate.")
	var noiseCount = pflag.IntP("noise-sweep", "n", 0, "Generate this many frames with increasing noise.")
	var outputFile = pflag.StringP("output", "o", "", "Send output to .wav file.")
	var eightBit = pflag.BoolP("eight-bit", "8", false, "8 bit audio rather than 16.")
	var stereo = pflag.BoolP("stereo", "2", false, "2 channels of audio rather than 1.")
	var leadingZeros = pflag.IntP("leading-zeros", "z", 0, "Number of leading zero bits before frame.")
	var morseWpm = pflag.IntP("morse", "M", 0, "Send morse code at this speed instead of packet.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s generates audio frames for testing purposes.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]...\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Fprintf(os.Stderr, "Specify output file with -o.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	if *amplitude < 0 || *amplitude > 200 {
		fmt.Fprintf(os.Stderr, "Amplitude must be in range of 0 to 200.\n")
		os.Exit(1)
	}

	var baud = *baudB
	if *baudb != 0 {
		baud = *baudb
	}
	if baud < MIN_BAUD || baud > MAX_BAUD {
		fmt.Fprintf(os.Stderr, "Use a more reasonable bit rate in range of %d - %d.\n", MIN_BAUD, MAX_BAUD)
		os.Exit(1)
	}

	var my_audio_config = audio_config_defaults()
	my_audio_config.chan_medium[0] = MEDIUM_RADIO
	my_audio_config.adev[0].samples_per_sec = *sampleRate
	if *eightBit {
		my_audio_config.adev[0].bits_per_sample = 8
	}
	if *stereo {
		my_audio_config.adev[0].num_channels = 2
		my_audio_config.chan_medium[1] = MEDIUM_RADIO
	}

	my_audio_config.achan[0].baud = baud

	switch {
	case baud < 600:
		my_audio_config.achan[0].modem_type = MODEM_AFSK
		my_audio_config.achan[0].mark_freq = 1600
		my_audio_config.achan[0].space_freq = 1800
	case baud < 1800:
		my_audio_config.achan[0].modem_type = MODEM_AFSK
		my_audio_config.achan[0].mark_freq = DEFAULT_MARK_FREQ
		my_audio_config.achan[0].space_freq = DEFAULT_SPACE_FREQ
	default:
		my_audio_config.achan[0].modem_type = MODEM_SCRAMBLE
	}

	if *g3ruh {
		my_audio_config.achan[0].modem_type = MODEM_SCRAMBLE
	}
	if *markFreq != 0 {
		my_audio_config.achan[0].mark_freq = *markFreq
	}
	if *spaceFreq != 0 {
		my_audio_config.achan[0].space_freq = *spaceFreq
	}
	my_audio_config.achan[1] = my_audio_config.achan[0]

	var writer = wav_open_write(*outputFile,
		my_audio_config.adev[0].samples_per_sec,
		my_audio_config.adev[0].bits_per_sample,
		my_audio_config.adev[0].num_channels)

	var noisy = &noisy_sink_s{
		out:             writer,
		bits_per_sample: my_audio_config.adev[0].bits_per_sample,
	}

	var tx = gen_tone_init(my_audio_config, *amplitude/2, noisy)
	var hs = hdlc_send_new(my_audio_config, tx.tone_gen_put_bit)

	var gp = &gen_packets_s{
		audio_config: my_audio_config,
		tx:           tx,
		hs:           hs,
		noisy:        noisy,
		leading_zero: *leadingZeros,
	}

	dw_printf("%d samples per second.  %d bits per sample.  %d audio channels.\n",
		my_audio_config.adev[0].samples_per_sec,
		my_audio_config.adev[0].bits_per_sample,
		my_audio_config.adev[0].num_channels)

	switch {
	case *morseWpm > 0:

		tx.morse_send(0, "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG", *morseWpm, 100, 100)

	case *noiseCount > 0:

		/*
		 * Sweep of frames with increasing noise, for comparing
		 * demodulator performance.
		 */
		for i := 1; i <= *noiseCount; i++ {
			noisy.noise_level = float64(i) / float64(*noiseCount) * 0.5
			gp.send_packet(fmt.Sprintf("WB2OSZ-15>TEST:,The quick brown fox jumps over the lazy dog!  %04d of %04d", i, *noiseCount))
		}

	default:

		/*
		 * Read packets from stdin, one per line, or send a few
		 * built-in test frames when input is a terminal.
		 */
		var fi, _ = os.Stdin.Stat()
		if fi.Mode()&os.ModeCharDevice == 0 {
			var scanner = bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				var line = strings.TrimSpace(scanner.Text())
				if line != "" {
					gp.send_packet(line)
				}
			}
		} else {
			for i := 1; i <= 4; i++ {
				gp.send_packet(fmt.Sprintf("WB2OSZ-15>TEST:,The quick brown fox jumps over the lazy dog!  %04d of %04d", i, 4))
			}
		}
	}

	if err := writer.wav_close(); err != nil {
		fmt.Fprintf(os.Stderr, "Couldn't write output file: %v\n", err)
		os.Exit(1)
	}

	dw_printf("%d audio bytes written to %s.\n", writer.byte_count(), *outputFile)
}

type gen_packets_s struct {
	audio_config *audio_s
	tx           *tx_s
	hs           *hdlc_send_s
	noisy        *noisy_sink_s
	leading_zero int
}

func (gp *gen_packets_s) send_packet(str string) {

	var pp = ax25_from_text(str, true)
	if pp == nil {
		dw_log.Error("Invalid packet, skipping.", "text", str)
		return
	}

	var channel = 0

	/* Idle flags give the receive PLL something to lock on to. */

	gp.hs.layer2_preamble_postamble(channel, 32)

	if gp.leading_zero > 0 {
		for range gp.leading_zero {
			gp.hs.send_bit_nrzi(channel, 0)
		}
	}

	gp.hs.layer2_send_frame(channel, pp, false)
	gp.hs.layer2_preamble_postamble(channel, 2)
	gp.tx.audio_flush(ACHAN2ADEV(channel))
}
