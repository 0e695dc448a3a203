package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Wire the receive pipeline together:  one thread reads
 *		audio and pushes samples through the demodulators, one
 *		works off the bit fix up queue, and one consumes good
 *		decoded frames for the applications.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"sync"
)

type recv_s struct {
	audio_config *audio_s

	rx  *rx_s
	dlq *dlq_s
	rq  *rq_s

	digi *digipeater_s /* Optional. */

	plog *packet_log_s /* Optional. */

	wg sync.WaitGroup
}

func recv_init(pa *audio_s, digi *digipeater_s, plog *packet_log_s, ptt ptt_sink) *recv_s {

	var rs = &recv_s{
		audio_config: pa,
		dlq:          dlq_init(),
		rq:           rq_init(),
		digi:         digi,
		plog:         plog,
	}

	rs.rx = rx_new(pa, rs.dlq.dlq_rec_frame)
	rs.rx.retry_queue = rs.rq
	rs.rx.dcd_change_hook = func(channel int, state bool) {
		ptt.ptt_set(OCTYPE_DCD, channel, state)
	}

	return rs
}

/*------------------------------------------------------------------
 *
 * Name:	recv_start
 *
 * Purpose:	Start the long-lived receive threads:  the audio reader
 *		for device 0, the bit fix up worker, and the application
 *		worker.
 *
 *------------------------------------------------------------------*/

func (rs *recv_s) recv_start(src audio_byte_source) {

	rs.wg.Add(3)

	go func() {
		defer rs.wg.Done()
		rs.recv_adev_thread(0, src)
	}()

	go func() {
		defer rs.wg.Done()
		rs.rx.hdlc_rec2_worker(rs.rq)
	}()

	go func() {
		defer rs.wg.Done()
		rs.recv_process_thread()
	}()
}

/* Wake everything so the shutdown flag is noticed, then wait. */

func (rs *recv_s) recv_stop() {
	request_shutdown()
	rs.rq.rq_wake_all()
	rs.dlq.dlq_wake_all()
	rs.wg.Wait()
}

/*------------------------------------------------------------------
 *
 * Name:	recv_adev_thread
 *
 * Purpose:	Read audio samples from one device and push them
 *		through all the subchannels of its channel(s) until end
 *		of stream.
 *
 *------------------------------------------------------------------*/

func (rs *recv_s) recv_adev_thread(a int, src audio_byte_source) {

	for !shutdown_requested() {
		for c := 0; c < rs.audio_config.adev[a].num_channels; c++ {

			var audio_sample = demod_get_sample(src, rs.audio_config.adev[a].bits_per_sample)
			if audio_sample >= 256*256 {
				/* End of stream; orderly drain. */
				dw_log.Info("Audio input stream ended.", "adev", a)
				return
			}

			var channel = ADEVFIRSTCHAN(a) + c
			if rs.audio_config.chan_medium[channel] == MEDIUM_RADIO {
				rs.rx.multi_modem_process_sample(channel, audio_sample)
			}
		}
	}
}

/*------------------------------------------------------------------
 *
 * Name:	recv_process_thread
 *
 * Purpose:	Application worker:  take decoded frames off the queue,
 *		print them the way a TNC in monitor mode would, log
 *		them, and hand them to the digipeater.
 *
 *------------------------------------------------------------------*/

func (rs *recv_s) recv_process_thread() {

	for rs.dlq.dlq_wait_while_empty() {
		for {
			var item, ok = rs.dlq.dlq_remove()
			if !ok {
				break
			}
			rs.app_process_rec_packet(item)
		}
	}
}

func (rs *recv_s) app_process_rec_packet(item dlq_item_t) {

	var pp = item.pp

	var heard string
	if pp.ax25_get_num_addr() >= 2 {
		heard = pp.ax25_get_addr_with_ssid(pp.ax25_get_heard())
	}

	var display_retries = ""
	if item.retries > RETRY_NONE {
		display_retries = fmt.Sprintf(" [%d] ", int(item.retries))
	}

	dw_printf("%s audio level = %s%s  %s\n", heard,
		ax25_alevel_to_text(item.alevel), display_retries, item.spectrum)

	var subchan_display = fmt.Sprintf("%d.%d", item.channel, item.subchannel)
	if rs.audio_config.achan[item.channel].num_slicers > 1 {
		subchan_display = fmt.Sprintf("%d.%d.%d", item.channel, item.subchannel, item.slice)
	}

	dw_printf("[%s] %s%s\n", subchan_display, pp.ax25_format_addrs(),
		ax25_safe_print(pp.ax25_get_info(), !pp.ax25_is_aprs()))

	if rs.plog != nil {
		rs.plog.log_write(item.channel, pp, item.alevel, item.retries)
	}

	/*
	 * APRS UI frames go to the digipeater.  Ownership of pp stays
	 * here; the digipeater duplicates anything it forwards.
	 */
	if rs.digi != nil && pp.ax25_is_aprs() {
		rs.digi.digipeater(item.channel, pp)
	}
}
