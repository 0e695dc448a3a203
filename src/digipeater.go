package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Act as an APRS digital repeater.
 *
 * Description:	Decide whether a received packet should be digipeated
 *		and make the necessary modifications.  The input packet
 *		is never modified; every path that forwards operates on
 *		a duplicate.
 *
 * References:	APRS Protocol Reference, document version 1.0.1
 *
 *			http://www.aprs.org/doc/APRS101.PDF
 *
 *		"The New n-N Paradigm"
 *
 *			http://www.aprs.org/fix14439.html
 *
 *		Preemptive Digipeating
 *
 *			http://www.aprs.org/aprs12/preemptive-digipeating.txt
 *
 *------------------------------------------------------------------*/

import (
	"regexp"
	"time"
)

type preempt_t int

const (
	PREEMPT_OFF preempt_t = iota
	PREEMPT_DROP
	PREEMPT_MARK
	PREEMPT_TRACE
)

/*
 * Rules for one (from_chan, to_chan) pair.
 */

type digi_rule_s struct {
	enabled bool

	alias *regexp.Regexp /* Compiled pattern for station aliases or */
	/* "trapping" (repeating only once). */

	wide *regexp.Regexp /* Compiled pattern for normal WIDEn-n digipeating. */

	preempt preempt_t

	filter *pfilter_t /* Optional packet filter expression. */
}

type digi_config_s struct {
	dedupe_time time.Duration

	rule [MAX_TOTAL_CHANS][MAX_TOTAL_CHANS]digi_rule_s
}

type digipeater_s struct {
	audio_config *audio_s
	config       *digi_config_s
	dedupe       *dedupe_s
	tq           *tq_s

	/* Count of packets digipeated for each from/to combination. */

	digi_count [MAX_TOTAL_CHANS][MAX_TOTAL_CHANS]int
}

func digipeater_init(p_audio_config *audio_s, p_digi_config *digi_config_s, tq *tq_s) *digipeater_s {
	return &digipeater_s{
		audio_config: p_audio_config,
		config:       p_digi_config,
		dedupe:       dedupe_init(p_digi_config.dedupe_time),
		tq:           tq,
	}
}

func (dg *digipeater_s) digipeater_get_count(from_chan int, to_chan int) int {
	return dg.digi_count[from_chan][to_chan]
}

/*
 * If the destination SSID is non-zero and there is no digipeater
 * path, the SSID encodes one of 15 generic APRS digipeater paths.
 */

var dest_ssid_path = [16]string{
	"",        /* 0 - No path. */
	"WIDE1-1", /* 1 - Primary. */
	"WIDE2-2", /* 2 */
	"WIDE3-3", /* 3 */
	"WIDE4-4", /* 4 */
	"WIDE5-5", /* 5 */
	"WIDE6-6", /* 6 */
	"WIDE7-7", /* 7 */
	"WIDE1-1", /* 8 - North path. */
	"WIDE1-1", /* 9 - South path. */
	"WIDE1-1", /* 10 - East path. */
	"WIDE1-1", /* 11 - West path. */
	"WIDE2-2", /* 12 - North path. */
	"WIDE2-2", /* 13 - South path. */
	"WIDE2-2", /* 14 - East path. */
	"WIDE2-2", /* 15 - West path. */
}

/*------------------------------------------------------------------------------
 *
 * Name:	digipeater
 *
 * Purpose:	Re-transmit packet if it matches the rules.
 *
 * Inputs:	from_chan	- Radio channel where it was received.
 *
 * 		pp		- Packet object.
 *
 * Description:	Packets digipeated to the same channel should get out
 *		quickly, stepping on each other with every other digi
 *		that heard the same packet, so the packet clears the
 *		local area in one packet time.  Those go on the high
 *		priority queue.  Cross-channel copies are lower priority.
 *
 *------------------------------------------------------------------------------*/

func (dg *digipeater_s) digipeater(from_chan int, pp *packet_t) {

	if from_chan < 0 || from_chan >= MAX_TOTAL_CHANS ||
		dg.audio_config.chan_medium[from_chan] != MEDIUM_RADIO {
		dw_log.Error("APRS digipeater: Did not expect to receive on invalid channel.", "chan", from_chan)
		return
	}

	/*
	 * First pass:  packets being digipeated to the same channel.
	 */
	for to_chan := 0; to_chan < MAX_RADIO_CHANS; to_chan++ {
		if dg.config.rule[from_chan][to_chan].enabled && to_chan == from_chan {
			var result = dg.digipeat_match(from_chan, pp, to_chan)
			if result != nil {
				dg.dedupe.dedupe_remember(result, to_chan)
				dg.tq.tq_append(to_chan, TQ_PRIO_0_HI, result)
				dg.digi_count[from_chan][to_chan]++
			}
		}
	}

	/*
	 * Second pass:  packets being digipeated to a different channel.
	 */
	for to_chan := 0; to_chan < MAX_RADIO_CHANS; to_chan++ {
		if dg.config.rule[from_chan][to_chan].enabled && to_chan != from_chan {
			var result = dg.digipeat_match(from_chan, pp, to_chan)
			if result != nil {
				dg.dedupe.dedupe_remember(result, to_chan)
				dg.tq.tq_append(to_chan, TQ_PRIO_1_LO, result)
				dg.digi_count[from_chan][to_chan]++
			}
		}
	}
}

/*------------------------------------------------------------------------------
 *
 * Name:	digipeat_match
 *
 * Purpose:	A simple digipeater for APRS.
 *
 * Input:	from_chan	- Channel packet was received on.
 *
 *		pp		- Packet object.
 *
 *		to_chan		- Channel number we are transmitting to.
 *
 * Returns:	Packet object for transmission or nil.  The original
 *		packet is not modified.  This is very important because
 *		we could digipeat from one channel to many.
 *
 * Description:	The packet will be digipeated if the next unused
 *		digipeater field matches one of the following:
 *
 *			- mycall for the receiving channel
 *			- the alias list (only once)
 *			- the wide list (usual WIDEn-N rules)
 *
 *------------------------------------------------------------------------------*/

func (dg *digipeater_s) digipeat_match(from_chan int, pp *packet_t, to_chan int) *packet_t {

	var mycall_rec = dg.audio_config.achan[from_chan].mycall
	var mycall_xmit = dg.audio_config.achan[to_chan].mycall
	var rule = &dg.config.rule[from_chan][to_chan]

	/*
	 * First check if filtering has been configured.
	 */
	if rule.filter != nil {
		if !rule.filter.pfilter_eval(pp) {
			return nil
		}
	}

	/*
	 * The spec says the destination SSID can be coded to specify a
	 * generic APRS digipeater path.  If there is also an explicit
	 * digipeater path, ignore the destination SSID.  The input is
	 * never modified; translation happens on a copy.
	 */
	if pp.ax25_get_ssid(AX25_DESTINATION) != 0 && pp.ax25_get_num_repeaters() == 0 {
		var translated = ax25_dup(pp)
		translated.ax25_set_addr(AX25_REPEATER_1, dest_ssid_path[translated.ax25_get_ssid(AX25_DESTINATION)])
		translated.ax25_set_ssid(AX25_DESTINATION, 0)
		pp = translated
	}

	/*
	 * Find the first repeater station which doesn't have
	 * "has been repeated" set.
	 */
	var r = pp.ax25_get_first_not_repeated()
	if r < AX25_REPEATER_1 {
		return nil
	}

	var repeater = pp.ax25_get_addr_with_ssid(r)
	var ssid = pp.ax25_get_ssid(r)

	/*
	 * First check for explicit use of my call, including SSID.
	 * Someone might explicitly specify a particular path for
	 * testing purposes.  This bypasses the usual checks for
	 * duplicates and my call in the source.
	 */
	if repeater == mycall_rec {
		var result = ax25_dup(pp)
		/* If using multiple radio channels, they could have different calls. */
		result.ax25_set_addr(r, mycall_xmit)
		result.ax25_set_h(r)
		return result
	}

	/*
	 * Don't digipeat my own.
	 */
	if pp.ax25_get_addr_with_ssid(AX25_SOURCE) == mycall_rec {
		return nil
	}

	/*
	 * Next try to avoid retransmitting redundant information.
	 * Duplicates are detected by comparing only source, destination,
	 * and info part - not the changing via path.  Packets
	 * transmitted recently will not be transmitted again during
	 * the specified time period.
	 */
	if dg.dedupe.dedupe_check(pp, to_chan) {
		dw_printf("Digipeater: Drop redundant packet to channel %d.\n", to_chan)
		return nil
	}

	/*
	 * For the alias pattern, we unconditionally digipeat it once,
	 * i.e. just replace it with MYCALL.  My call should be an
	 * implied member of this set; we already caught it further up.
	 */
	if rule.alias != nil && rule.alias.MatchString(repeater) {
		var result = ax25_dup(pp)
		result.ax25_set_addr(r, mycall_xmit)
		result.ax25_set_h(r)
		return result
	}

	/*
	 * If preemptive digipeating is enabled, try matching my call
	 * and aliases against all remaining unused digipeaters.
	 */
	if rule.preempt != PREEMPT_OFF {
		for r2 := r + 1; r2 < pp.ax25_get_num_addr(); r2++ {
			var repeater2 = pp.ax25_get_addr_with_ssid(r2)

			if repeater2 == mycall_rec ||
				(rule.alias != nil && rule.alias.MatchString(repeater2)) {

				var result = ax25_dup(pp)
				result.ax25_set_addr(r2, mycall_xmit)
				result.ax25_set_h(r2)

				switch rule.preempt {
				case PREEMPT_DROP: /* Remove all prior. */
					for r2 > AX25_REPEATER_1 {
						result.ax25_remove_addr(r2 - 1)
						r2--
					}
				case PREEMPT_MARK: /* Mark all prior as used. */
					r2--
					for r2 >= AX25_REPEATER_1 && !result.ax25_get_h(r2) {
						result.ax25_set_h(r2)
						r2--
					}
				default: /* PREEMPT_TRACE */
					/* Remove prior unused digis so the via path */
					/* is an accurate record of where the packet */
					/* actually traveled. */
					for r2 > AX25_REPEATER_1 && !result.ax25_get_h(r2-1) {
						result.ax25_remove_addr(r2 - 1)
						r2--
					}
				}

				return result
			}
		}
	}

	/*
	 * For the wide pattern, we check the SSID and decrement it:
	 *
	 * If ssid == 1, simply replace the repeater with my call and
	 *	mark it as being used.
	 *
	 * Otherwise, if ssid is in range of 2 to 7, decrement it and
	 *	don't mark the repeater as used.  Insert own call ahead
	 *	of it for tracing if we don't already have the maximum
	 *	number of repeaters.
	 */
	if rule.wide != nil && rule.wide.MatchString(repeater) {

		if ssid == 1 {
			var result = ax25_dup(pp)
			result.ax25_set_addr(r, mycall_xmit)
			result.ax25_set_h(r)
			return result
		}

		if ssid >= 2 && ssid <= 7 {
			var result = ax25_dup(pp)
			result.ax25_set_ssid(r, ssid-1) // should be at least 1

			if pp.ax25_get_num_repeaters() < AX25_MAX_REPEATERS {
				result.ax25_insert_addr(r, mycall_xmit)
				result.ax25_set_h(r)
			}
			return result
		}
	}

	/*
	 * Don't repeat it if we get here.
	 */
	return nil
}
