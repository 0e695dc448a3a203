package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Test fixture for the receive path:  decode AX.25 frames
 *		from an audio recording.
 *
 * Description:	This provides an easy way to test decoding performance
 *		and functionality much quicker than normal real-time.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

type atest_stats_s struct {
	packets_decoded int
	h_opt           bool
	audio_config    *audio_s
}

func AtestMain() {

	var my_audio_config = audio_config_defaults()

	var bitrateStr = pflag.StringP("bitrate", "B", strconv.Itoa(DEFAULT_BAUD), `Bits/second for data.  Proper modem automatically selected for speed.
300 bps defaults to AFSK tones of 1600 & 1800.
1200 bps uses AFSK tones of 1200 & 2200.
9600 bps and up uses K9NG/G3RUH standard.`)
	var g3ruh = pflag.BoolP("g3ruh", "g", false, "Use G3RUH modem rather than default for data rate.")
	var modemProfile = pflag.StringP("modem-profile", "P", "", "Select the demodulator type such as A or B, with optional + for multiple slicers.")
	var decimate = pflag.IntP("decimate", "D", 0, "Divide audio sample rate by n.  0 is auto-select.")
	var fixBits = pflag.IntP("fix-bits", "F", 0, `Amount of effort to try fixing frames with an invalid CRC.
0 (default) = consider only correct frames.
1 = Try to fix only a single bit.
Higher values = Try modifying more bits to get a good CRC.`)
	var errorIfLessThan = pflag.IntP("error-if-less-than", "L", -1, "Error if less than this number decoded.")
	var errorIfGreaterThan = pflag.IntP("error-if-greater-than", "G", -1, "Error if greater than this number decoded.")
	var channel0 = pflag.BoolP("channel-0", "0", true, "Use channel 0 (left) of stereo audio.")
	var channel1 = pflag.BoolP("channel-1", "1", false, "Use channel 1 (right) of stereo audio.")
	var channel2 = pflag.BoolP("channel-2", "2", false, "Use both channels of stereo audio.")
	var hexDisplay = pflag.BoolP("hex-display", "h", false, "Print frame contents as hexadecimal bytes.")
	var bitErrorRate = pflag.Float64P("bit-error-rate", "e", 0.0, "Receive Bit Error Rate (BER).")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s decodes AX.25 frames from audio recordings.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... <WAV FILE>...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "$ gen_packets -o test1.wav\n")
		fmt.Fprintf(os.Stderr, "$ atest test1.wav\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "$ gen_packets -B 9600 -o test9.wav\n")
		fmt.Fprintf(os.Stderr, "$ atest -B 9600 test9.wav\n")
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *decimate < 0 || *decimate > 8 {
		fmt.Fprintf(os.Stderr, "Decimate should be between 0 and 8 inclusive, not %d.\n", *decimate)
		os.Exit(1)
	}
	my_audio_config.achan[0].decimate = *decimate

	if *fixBits < int(RETRY_NONE) || *fixBits >= int(RETRY_MAX) {
		fmt.Fprintf(os.Stderr, "Fix Bits should be between %d and %d inclusive, not %d.\n",
			int(RETRY_NONE), int(RETRY_MAX)-1, *fixBits)
		os.Exit(1)
	}
	my_audio_config.achan[0].fix_bits = retry_t(*fixBits)

	var channelFlagCount int
	for _, b := range []bool{*channel1, *channel2} {
		if b {
			channelFlagCount++
		}
	}
	if channelFlagCount > 1 {
		fmt.Fprintf(os.Stderr, "Pick at most one of left/right/both channels.\n")
		os.Exit(1)
	}
	var decode_only = 0 /* Set to 0 or 1 to decode only one channel.  2 for both. */
	if *channel0 {
		decode_only = 0
	}
	if *channel1 {
		decode_only = 1
	}
	if *channel2 {
		decode_only = 2
	}

	my_audio_config.recv_ber = *bitErrorRate

	var bitrate, bitrateParseErr = strconv.Atoi(*bitrateStr)
	if bitrateParseErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid bitrate (should be an integer): %s\n", *bitrateStr)
		os.Exit(1)
	}

	/*
	 * Set modem type based on data rate:
	 *    300 implies 1600/1800 AFSK.
	 *    1200 implies 1200/2200 AFSK.
	 *    9600 implies G3RUH baseband scrambled.
	 */
	my_audio_config.achan[0].baud = bitrate

	switch {
	case bitrate < 600: // e.g. HF SSB packet
		my_audio_config.achan[0].modem_type = MODEM_AFSK
		my_audio_config.achan[0].mark_freq = 1600
		my_audio_config.achan[0].space_freq = 1800
	case bitrate < 1800: // common 1200
		my_audio_config.achan[0].modem_type = MODEM_AFSK
		my_audio_config.achan[0].mark_freq = DEFAULT_MARK_FREQ
		my_audio_config.achan[0].space_freq = DEFAULT_SPACE_FREQ
	default:
		my_audio_config.achan[0].modem_type = MODEM_SCRAMBLE
		my_audio_config.achan[0].mark_freq = 0
		my_audio_config.achan[0].space_freq = 0
		my_audio_config.achan[0].profiles = " " // avoid getting default later.
	}

	if my_audio_config.achan[0].baud < MIN_BAUD || my_audio_config.achan[0].baud > MAX_BAUD {
		fmt.Fprintf(os.Stderr, "Use a more reasonable bit rate in range of %d - %d.\n", MIN_BAUD, MAX_BAUD)
		os.Exit(1)
	}

	/*
	 * -g option means force G3RUH regardless of speed.
	 */
	if *g3ruh {
		my_audio_config.achan[0].modem_type = MODEM_SCRAMBLE
		my_audio_config.achan[0].mark_freq = 0
		my_audio_config.achan[0].space_freq = 0
		my_audio_config.achan[0].profiles = " "
	}

	// Needs to be after -B and -g.
	if *modemProfile != "" {
		dw_printf("Demodulator profile set to \"%s\"\n", *modemProfile)
		my_audio_config.achan[0].profiles = *modemProfile
	}

	my_audio_config.achan[1] = my_audio_config.achan[0]

	if len(pflag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "Specify .WAV file name on command line.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	var start_time = time.Now()
	var total_filetime float64
	var packets_decoded_total = 0

	for _, wavFileName := range pflag.Args() {

		var reader, err = wav_open_read(wavFileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Couldn't open file for read: %s: %v\n", wavFileName, err)
			os.Exit(1)
		}

		my_audio_config.adev[0].samples_per_sec = reader.samples_per_sec
		my_audio_config.adev[0].bits_per_sample = reader.bits_per_sample
		my_audio_config.adev[0].num_channels = reader.num_channels

		my_audio_config.chan_medium[0] = MEDIUM_RADIO
		if reader.num_channels == 2 {
			my_audio_config.chan_medium[1] = MEDIUM_RADIO
		}

		dw_printf("%d samples per second.  %d bits per sample.  %d audio channels.\n",
			my_audio_config.adev[0].samples_per_sec,
			my_audio_config.adev[0].bits_per_sample,
			my_audio_config.adev[0].num_channels)

		var one_filetime = float64(reader.data_size()) /
			float64((my_audio_config.adev[0].bits_per_sample/8)*
				my_audio_config.adev[0].num_channels*
				my_audio_config.adev[0].samples_per_sec)
		total_filetime += one_filetime

		dw_printf("%d audio bytes in file.  Duration = %.1f seconds.\n", reader.data_size(), one_filetime)
		dw_printf("Fix Bits level = %d\n", int(my_audio_config.achan[0].fix_bits))

		/*
		 * Initialize the demodulators and HDLC decoders.  Done for
		 * each file because they could have different sample rates.
		 */
		var stats = &atest_stats_s{h_opt: *hexDisplay, audio_config: my_audio_config}
		var rx = rx_new(my_audio_config, stats.atest_rec_packet)

		var e_o_f = false
		for !e_o_f {
			for c := 0; c < my_audio_config.adev[0].num_channels; c++ {

				var audio_sample = demod_get_sample(reader, my_audio_config.adev[0].bits_per_sample)

				if audio_sample >= 256*256 {
					e_o_f = true
					continue
				}

				if decode_only == 0 && c != 0 {
					continue
				}
				if decode_only == 1 && c != 1 {
					continue
				}

				rx.multi_modem_process_sample(c, audio_sample)
			}
		}

		dw_printf("\n\n")
		dw_printf("%d from %s\n", stats.packets_decoded, wavFileName)
		packets_decoded_total += stats.packets_decoded
	}

	var elapsed = time.Since(start_time).Seconds()
	if elapsed > 0 {
		dw_printf("%d packets decoded in %.3f seconds.  %.1f x realtime\n",
			packets_decoded_total, elapsed, total_filetime/elapsed)
	}

	if *errorIfLessThan != -1 && packets_decoded_total < *errorIfLessThan {
		fmt.Fprintf(os.Stderr, "\n * * * TEST FAILED: number decoded is less than %d * * * \n", *errorIfLessThan)
		os.Exit(1)
	}
	if *errorIfGreaterThan != -1 && packets_decoded_total > *errorIfGreaterThan {
		fmt.Fprintf(os.Stderr, "\n * * * TEST FAILED: number decoded is greater than %d * * * \n", *errorIfGreaterThan)
		os.Exit(1)
	}
}

/*
 * Called for each good frame, playing the role the decoded frame
 * queue has in the full application.
 */

func (st *atest_stats_s) atest_rec_packet(channel int, subchan int, slice int, pp *packet_t,
	alevel alevel_t, retries retry_t, spectrum string) {

	st.packets_decoded++

	var heard = "?"
	if pp.ax25_get_num_addr() >= 2 {
		heard = pp.ax25_get_addr_with_ssid(pp.ax25_get_heard())
	}

	dw_printf("\nDECODED[%d] %s audio level = %s  %s\n",
		st.packets_decoded, heard, ax25_alevel_to_text(alevel), spectrum)

	var subchan_display = fmt.Sprintf("%d.%d", channel, subchan)
	if st.audio_config.achan[channel].num_slicers > 1 {
		subchan_display = fmt.Sprintf("%d.%d.%d", channel, subchan, slice)
	}

	dw_printf("[%s] %s%s\n", subchan_display, pp.ax25_format_addrs(),
		ax25_safe_print(pp.ax25_get_info(), !pp.ax25_is_aprs()))

	if st.h_opt {
		pp.ax25_hex_dump()
	}
}
