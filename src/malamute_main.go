package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the software TNC:
 *
 *			AFSK and scrambled baseband modems.
 *			AX.25 encoder/decoder.
 *			APRS digipeater.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func MalamuteMain() {

	var configFile = pflag.StringP("config", "c", "malamute.yaml", "Configuration file.")
	var udpAudio = pflag.StringP("udp", "u", "", "Take audio input from UDP datagrams on this address instead of the sound device.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s is a software TNC: modem, AX.25 decoder, and APRS digipeater.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]...\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	var pa, dc, logFile, err = config_read(*configFile)
	if err != nil {
		dw_log.Fatal("Could not read configuration.", "err", err)
	}

	var plog *packet_log_s
	if logFile != "" {
		plog, err = packet_log_init(logFile)
		if err != nil {
			dw_log.Fatal("Could not open packet log.", "err", err)
		}
	}

	var ptt = ptt_init_none()

	/*
	 * Transmit side:  queue, tone generator, serializer.
	 */
	var out audio_byte_sink
	out, err = audio_portaudio_sink(pa.adev[0].samples_per_sec, pa.adev[0].num_channels)
	if err != nil {
		dw_log.Fatal("Could not open audio output.", "err", err)
	}

	var tq = tq_init(pa)
	var tx = gen_tone_init(pa, 50, out)
	var hs = hdlc_send_new(pa, tx.tone_gen_put_bit)

	/*
	 * Receive side.
	 */
	var digi = digipeater_init(pa, dc, tq)
	var rs = recv_init(pa, digi, plog, ptt)

	var xs = xmit_init(pa, tq, tx, hs, ptt, func(channel int) bool {
		return rs.rx.hdlc_rec_data_detect_any(channel)
	})

	var src audio_byte_source
	if *udpAudio != "" {
		src, err = audio_udp_source(*udpAudio)
	} else {
		src, err = audio_portaudio_source(pa.adev[0].samples_per_sec, pa.adev[0].num_channels)
	}
	if err != nil {
		dw_log.Fatal("Could not open audio input.", "err", err)
	}

	rs.recv_start(src)

	for channel := 0; channel < MAX_RADIO_CHANS; channel++ {
		if pa.chan_medium[channel] == MEDIUM_RADIO {
			go xs.xmit_thread(channel)
		}
	}

	/*
	 * Run until interrupted, then drain and force PTT off.
	 */
	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	request_shutdown()
	tq.tq_wake_all()
	rs.recv_stop()
	ptt.ptt_term()
	plog.log_term()
}
