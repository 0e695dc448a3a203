package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Decoded frame queue - hand off decoded frames from the
 *		demodulator thread(s) to the application processing
 *		thread (digipeater, monitor printing, etc.).
 *
 * Description:	The queue preserves, per (channel, subchannel, slicer),
 *		the order frames were decoded in.  The consumer blocks
 *		on a condition variable while the queue is empty.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
	"sync/atomic"
)

/*
 * Process-wide orderly shutdown flag, checked at queue wake points.
 */

var g_shutdown atomic.Bool

func request_shutdown() {
	g_shutdown.Store(true)
}

func shutdown_requested() bool {
	return g_shutdown.Load()
}

type dlq_item_t struct {
	channel    int
	subchannel int
	slice      int
	pp         *packet_t
	alevel     alevel_t
	retries    retry_t
	spectrum   string
}

type dlq_s struct {
	mutex sync.Mutex
	wake  *sync.Cond
	queue []dlq_item_t
}

func dlq_init() *dlq_s {
	var q = new(dlq_s)
	q.wake = sync.NewCond(&q.mutex)
	return q
}

/*------------------------------------------------------------------
 *
 * Name:	dlq_rec_frame
 *
 * Purpose:	Add a received packet to the end of the queue and wake
 *		up the processing thread.  Ownership of the packet
 *		passes to the queue.
 *
 *------------------------------------------------------------------*/

func (q *dlq_s) dlq_rec_frame(channel int, subchannel int, slice int, pp *packet_t, alevel alevel_t, retries retry_t, spectrum string) {

	if pp == nil {
		dw_log.Error("Internal error: dlq_rec_frame nil packet pointer.  Please report this!")
		return
	}

	q.mutex.Lock()
	q.queue = append(q.queue, dlq_item_t{
		channel:    channel,
		subchannel: subchannel,
		slice:      slice,
		pp:         pp,
		alevel:     alevel,
		retries:    retries,
		spectrum:   spectrum,
	})
	q.mutex.Unlock()
	q.wake.Signal()
}

/*------------------------------------------------------------------
 *
 * Name:	dlq_wait_while_empty
 *
 * Purpose:	Block until something is in the queue or shutdown has
 *		been requested.  Returns false on shutdown.
 *
 *------------------------------------------------------------------*/

func (q *dlq_s) dlq_wait_while_empty() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for len(q.queue) == 0 {
		if shutdown_requested() {
			return false
		}
		q.wake.Wait()
	}
	return true
}

/* Remove the oldest item.  ok is false when the queue is empty. */

func (q *dlq_s) dlq_remove() (dlq_item_t, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.queue) == 0 {
		return dlq_item_t{}, false
	}
	var item = q.queue[0]
	q.queue = q.queue[1:]
	return item, true
}

/* Wake any waiting consumer so it can notice the shutdown flag. */

func (q *dlq_s) dlq_wake_all() {
	q.wake.Broadcast()
}
