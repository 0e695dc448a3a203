package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Avoid transmitting duplicate packets which are too
 *		close together.
 *
 * Description:	Duplicates can occur when a digipeated packet loops
 *		between digipeaters, when we hear our own transmission
 *		repeated by someone else, when the same packet arrives
 *		from multiple digipeaters, or when someone sends the
 *		same thing over and over.
 *
 *		For detecting duplicates we look at source, destination,
 *		and the information field, but NOT the changing list of
 *		digipeaters.  Only a checksum is kept to reduce memory
 *		requirements and the amount of computation for
 *		comparisons.  There is a very very small probability
 *		that two unrelated packets will result in the same
 *		checksum and the undesired dropping of a packet.
 *
 * References:	"The New n-N Paradigm"
 *
 *			http://www.aprs.org/fix14439.html
 *
 *------------------------------------------------------------------*/

import (
	"sync"
	"time"
)

const HISTORY_MAX = 25 /* Maximum number of transmission records to */
/* keep.  If we run out of room the oldest ones */
/* are overwritten before they expire. */

type dedupe_history_entry struct {
	time_stamp time.Time /* When the packet was transmitted. */

	checksum uint16 /* Some sort of checksum for the */
	/* source, destination, and information. */

	xmit_channel int /* Radio channel number. */
}

type dedupe_s struct {
	mutex sync.Mutex

	history_time time.Duration /* How long to retain information */
	/* about recent transmissions. */

	insert_next int /* Index where next item should be stored. */

	history [HISTORY_MAX]dedupe_history_entry

	now func() time.Time /* Overridable for testing. */
}

func dedupe_init(ttl time.Duration) *dedupe_s {
	return &dedupe_s{
		history_time: ttl,
		now:          time.Now,
	}
}

/*------------------------------------------------------------------------------
 *
 * Name:	dedupe_remember
 *
 * Purpose:	Save information about a packet being transmitted so we
 *		can detect, and avoid, duplicates later.
 *
 * Inputs:	pp	- Packet object.
 *
 *		channel	- Radio channel for transmission.
 *
 *------------------------------------------------------------------------------*/

func (d *dedupe_s) dedupe_remember(pp *packet_t, channel int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.history[d.insert_next] = dedupe_history_entry{
		time_stamp:   d.now(),
		checksum:     pp.ax25_dedupe_crc(),
		xmit_channel: channel,
	}

	d.insert_next++
	if d.insert_next >= HISTORY_MAX {
		d.insert_next = 0
	}
}

/*------------------------------------------------------------------------------
 *
 * Name:	dedupe_check
 *
 * Purpose:	Check whether this is a duplicate of another packet
 *		sent to the same channel recently.
 *
 * Returns:	True if it is a duplicate.
 *
 *------------------------------------------------------------------------------*/

func (d *dedupe_s) dedupe_check(pp *packet_t, channel int) bool {
	var crc = pp.ax25_dedupe_crc()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var now = d.now()

	for _, h := range d.history {
		if h.checksum != crc {
			continue
		}
		if h.xmit_channel != channel {
			continue
		}
		if now.After(h.time_stamp.Add(d.history_time)) {
			continue
		}
		return true
	}
	return false
}
