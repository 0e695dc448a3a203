package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Transmit queue - hold packets for transmission until
 *		the channel is clear.
 *
 * Description:	Each radio channel has two queues:  high priority for
 *		digipeated and control frames, low priority for
 *		originated traffic.  Producers append; each radio
 *		channel has its own consumer thread, which blocks on
 *		that channel's condition variable until one of the
 *		channel's queues becomes non-empty.  There is no single
 *		consumer per audio device; channels of one device take
 *		turns through the transmit side's per-device mutex.
 *
 *		One mutex covers all channels; per-channel condition
 *		variables avoid spurious wake-ups across channels.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
)

const TQ_NUM_PRIO = 2 /* Number of priorities. */

const TQ_PRIO_0_HI = 0
const TQ_PRIO_1_LO = 1

/*
 * There is no technical reason to limit the transmit queue length.
 * APRS packets are sent occasionally and can be discarded if they
 * can't go out in a reasonable amount of time; anything else might
 * legitimately queue up a large file, so the bound applies only to
 * APRS frames.
 */

const tq_aprs_bound = 100

type tq_s struct {
	audio_config *audio_s

	mutex sync.Mutex /* Shared by all channels. */

	queue [MAX_RADIO_CHANS][TQ_NUM_PRIO][]*packet_t

	wake_up_cond [MAX_RADIO_CHANS]*sync.Cond /* Notify transmit thread */
	/* when its queue becomes non-empty. */
}

func tq_init(audio_config_p *audio_s) *tq_s {
	var tq = &tq_s{audio_config: audio_config_p}
	for c := 0; c < MAX_RADIO_CHANS; c++ {
		tq.wake_up_cond[c] = sync.NewCond(&tq.mutex)
	}
	return tq
}

/*-------------------------------------------------------------------
 *
 * Name:        tq_append
 *
 * Purpose:     Add an APRS packet to the end of the specified
 *		transmit queue.
 *
 * Inputs:	channel	- Channel, 0 is first.
 *
 *		prio	- Priority, use TQ_PRIO_0_HI for digipeated or
 *			  TQ_PRIO_1_LO for normal.
 *
 *		pp	- Packet object.  Ownership passes to the queue;
 *			  the caller must not make further references.
 *
 *--------------------------------------------------------------------*/

func (tq *tq_s) tq_append(channel int, prio int, pp *packet_t) {

	if pp == nil {
		dw_log.Error("Internal error: tq_append nil packet pointer.  Please report this!")
		return
	}

	if prio < 0 || prio >= TQ_NUM_PRIO {
		dw_log.Error("Internal error: tq_append bad priority.", "prio", prio)
		return
	}

	if channel < 0 || channel >= MAX_RADIO_CHANS ||
		tq.audio_config.chan_medium[channel] != MEDIUM_RADIO {
		dw_log.Error("Request to transmit on invalid radio channel.", "chan", channel)
		return
	}

	/*
	 * Is the transmit queue out of control?  The bound is a useful
	 * sanity check for something going wrong; applied only to APRS.
	 */
	if pp.ax25_is_aprs() && tq.tq_count(channel, prio) > tq_aprs_bound {
		dw_log.Error("Transmit packet queue is too long.  Discarding packet.  "+
			"Perhaps the channel is so busy there is no opportunity to send.",
			"chan", channel)
		return
	}

	tq.mutex.Lock()
	tq.queue[channel][prio] = append(tq.queue[channel][prio], pp)
	tq.mutex.Unlock()

	tq.wake_up_cond[channel].Signal()
}

/*-------------------------------------------------------------------
 *
 * Name:        tq_wait_while_empty
 *
 * Purpose:     Sleep while the transmit queues for this channel are
 *		empty rather than spinning and burning up CPU time.
 *
 * Returns:	false when shutdown has been requested.
 *
 *--------------------------------------------------------------------*/

func (tq *tq_s) tq_wait_while_empty(channel int) bool {
	tq.mutex.Lock()
	defer tq.mutex.Unlock()

	for len(tq.queue[channel][TQ_PRIO_0_HI]) == 0 && len(tq.queue[channel][TQ_PRIO_1_LO]) == 0 {
		if shutdown_requested() {
			return false
		}
		tq.wake_up_cond[channel].Wait()
	}
	return true
}

/* Wake all consumers so they can notice the shutdown flag. */

func (tq *tq_s) tq_wake_all() {
	for c := 0; c < MAX_RADIO_CHANS; c++ {
		tq.wake_up_cond[c].Broadcast()
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        tq_remove
 *
 * Purpose:     Take off the first packet from the given queue.
 *		Ownership passes to the caller.
 *
 *--------------------------------------------------------------------*/

func (tq *tq_s) tq_remove(channel int, prio int) *packet_t {
	tq.mutex.Lock()
	defer tq.mutex.Unlock()

	if len(tq.queue[channel][prio]) == 0 {
		return nil
	}
	var pp = tq.queue[channel][prio][0]
	tq.queue[channel][prio] = tq.queue[channel][prio][1:]
	return pp
}

/*-------------------------------------------------------------------
 *
 * Name:        tq_peek
 *
 * Purpose:     Look at the first packet in the given queue without
 *		removing it.
 *
 *--------------------------------------------------------------------*/

func (tq *tq_s) tq_peek(channel int, prio int) *packet_t {
	tq.mutex.Lock()
	defer tq.mutex.Unlock()

	if len(tq.queue[channel][prio]) == 0 {
		return nil
	}
	return tq.queue[channel][prio][0]
}

func (tq *tq_s) tq_is_empty(channel int) bool {
	tq.mutex.Lock()
	defer tq.mutex.Unlock()

	return len(tq.queue[channel][TQ_PRIO_0_HI]) == 0 && len(tq.queue[channel][TQ_PRIO_1_LO]) == 0
}

/* Number of packets currently in the queue. */

func (tq *tq_s) tq_count(channel int, prio int) int {
	tq.mutex.Lock()
	defer tq.mutex.Unlock()

	return len(tq.queue[channel][prio])
}
