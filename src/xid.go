package malamute

/*------------------------------------------------------------------
 *
 * Purpose:   	Encode and decode the info field of XID frames.
 *
 * Description:	If we originate the connection, and the other end is
 *		capable of AX.25 version 2.2,
 *
 *		 - We send an XID command frame with our capabilities.
 *		 - The other sends back an XID response, possibly
 *		   reducing some values to be acceptable there.
 *		 - Both ends use the values in that response.
 *
 * References:	AX.25 Protocol Spec, sections 4.3.3.7 & 6.3.2.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
)

const FI_Format_Indicator = 0x82
const GI_Group_Identifier = 0x80

const PI_Classes_of_Procedures = 2
const PI_HDLC_Optional_Functions = 3
const PI_I_Field_Length_Rx = 6
const PI_Window_Size_Rx = 8
const PI_Ack_Timer = 9
const PI_Retries = 10

// The bit numbers in the protocol spec are confusing because its
// tables start with 1 for the LSB when everywhere else refers to the
// LSB as bit 0.  If we process the multibyte fields with the more
// significant byte first, we end up with the masks below.  This has
// nothing to do with the HDLC serializing order; we are dealing with
// bytes here.

const PV_Classes_Procedures_Balanced_ABM = 0x0100
const PV_Classes_Procedures_Half_Duplex = 0x2000
const PV_Classes_Procedures_Full_Duplex = 0x4000

const PV_HDLC_Optional_Functions_REJ_cmd_resp = 0x020000
const PV_HDLC_Optional_Functions_SREJ_cmd_resp = 0x040000
const PV_HDLC_Optional_Functions_Extended_Address = 0x800000

const PV_HDLC_Optional_Functions_Modulo_8 = 0x000400
const PV_HDLC_Optional_Functions_Modulo_128 = 0x000800
const PV_HDLC_Optional_Functions_TEST_cmd_resp = 0x002000
const PV_HDLC_Optional_Functions_16_bit_FCS = 0x008000

const PV_HDLC_Optional_Functions_Multi_SREJ_cmd_resp = 0x000020

const PV_HDLC_Optional_Functions_Synchronous_Tx = 0x000002

/* Level of selective reject support. */

type srej_t int

const (
	srej_none srej_t = iota /* Use REJ only. */
	srej_single
	srej_multi
	srej_not_specified
)

const modulo_unknown = 0

const G_UNKNOWN = -999999 /* Field not specified. */

/*
 * Defaults for fields absent in the encoded form.
 */

const XID_DEFAULT_I_FIELD_LENGTH_RX = 256
const XID_DEFAULT_WINDOW_SIZE_MOD_8 = 7
const XID_DEFAULT_WINDOW_SIZE_MOD_128 = 32
const XID_DEFAULT_ACK_TIMER = 3000
const XID_DEFAULT_RETRIES = 10

type xid_param_s struct {
	full_duplex int /* 0 = half, 1 = full, G_UNKNOWN if absent. */

	srej srej_t

	modulo int /* 8 or 128, modulo_unknown if absent. */

	i_field_length_rx int /* Maximum number of bytes I can handle in */
	/* the info part, G_UNKNOWN to omit. */

	window_size_rx int

	ack_timer int /* Acknowledge timer in milliseconds. */

	retries int
}

/* Apply the documented defaults for everything left unspecified. */

func (p *xid_param_s) xid_apply_defaults() {
	if p.full_duplex == G_UNKNOWN {
		p.full_duplex = 0
	}
	if p.srej == srej_not_specified {
		p.srej = srej_none
	}
	if p.modulo == modulo_unknown {
		p.modulo = 8
	}
	if p.i_field_length_rx == G_UNKNOWN {
		p.i_field_length_rx = XID_DEFAULT_I_FIELD_LENGTH_RX
	}
	if p.window_size_rx == G_UNKNOWN {
		if p.modulo == 128 {
			p.window_size_rx = XID_DEFAULT_WINDOW_SIZE_MOD_128
		} else {
			p.window_size_rx = XID_DEFAULT_WINDOW_SIZE_MOD_8
		}
	}
	if p.ack_timer == G_UNKNOWN {
		p.ack_timer = XID_DEFAULT_ACK_TIMER
	}
	if p.retries == G_UNKNOWN {
		p.retries = XID_DEFAULT_RETRIES
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        xid_parse
 *
 * Purpose:    	Decode the information part of an XID frame into
 *		individual values.
 *
 * Inputs:	info		- Information part of the frame.  Could
 *				  be empty.
 *
 * Outputs:	result		- Structure with extracted values.
 *
 *		desc		- Text description for troubleshooting.
 *
 * Returns:	true for mostly successful (with possible error
 *		messages), false for failure.
 *
 * Description:	The protocol spec says, for most of these fields, "if
 *		this field is not present, the current values are
 *		retained."  We set the numeric values to G_UNKNOWN and
 *		let the caller deal with it.
 *
 *--------------------------------------------------------------------*/

func xid_parse(info []byte, result *xid_param_s, desc *string) bool {

	result.full_duplex = G_UNKNOWN
	result.srej = srej_not_specified
	result.modulo = modulo_unknown
	result.i_field_length_rx = G_UNKNOWN
	result.window_size_rx = G_UNKNOWN
	result.ack_timer = G_UNKNOWN
	result.retries = G_UNKNOWN

	/* The information field is optional but that seems pretty lame. */

	if len(info) == 0 {
		return true
	}

	if len(info) < 4 {
		dw_log.Error("XID error: Information part is too short.", "len", len(info))
		return false
	}

	var i = 0

	if info[i] != FI_Format_Indicator {
		dw_log.Error("XID error: First byte of info field should be the Format Indicator.",
			"found", fmt.Sprintf("%02x", info[i]))
		return false
	}
	i++

	if info[i] != GI_Group_Identifier {
		dw_log.Error("XID error: Second byte of info field should be the Group Identifier.",
			"found", fmt.Sprintf("%02x", info[i]))
		return false
	}
	i++

	var group_len = int(info[i])<<8 + int(info[i+1])
	i += 2

	for i < 4+group_len && i+1 < len(info) {

		var pind = info[i]
		i++
		var plen = int(info[i])
		i++

		if plen < 1 || plen > 4 || i+plen > len(info) {
			dw_log.Error("XID error: Bad parameter length.", "len", plen)
			return true // got this far.
		}

		var pval = 0
		for j := 0; j < plen; j++ {
			pval = pval<<8 + int(info[i])
			i++
		}

		switch pind {

		case PI_Classes_of_Procedures:

			if pval&PV_Classes_Procedures_Half_Duplex != 0 && pval&PV_Classes_Procedures_Full_Duplex == 0 {
				result.full_duplex = 0
				*desc += "Half-Duplex "
			} else if pval&PV_Classes_Procedures_Full_Duplex != 0 && pval&PV_Classes_Procedures_Half_Duplex == 0 {
				result.full_duplex = 1
				*desc += "Full-Duplex "
			} else {
				result.full_duplex = 0
			}

		case PI_HDLC_Optional_Functions:

			if pval&PV_HDLC_Optional_Functions_REJ_cmd_resp != 0 {
				*desc += "REJ "
			}
			if pval&PV_HDLC_Optional_Functions_SREJ_cmd_resp != 0 {
				*desc += "SREJ "
			}
			if pval&PV_HDLC_Optional_Functions_Multi_SREJ_cmd_resp != 0 {
				*desc += "Multi-SREJ "
			}

			if pval&PV_HDLC_Optional_Functions_Multi_SREJ_cmd_resp != 0 {
				result.srej = srej_multi
			} else if pval&PV_HDLC_Optional_Functions_SREJ_cmd_resp != 0 {
				result.srej = srej_single
			} else if pval&PV_HDLC_Optional_Functions_REJ_cmd_resp != 0 {
				result.srej = srej_none
			} else {
				dw_log.Error("XID error: Expected at least one of REJ, SREJ, Multi-SREJ to be set.")
				result.srej = srej_none
			}

			if pval&PV_HDLC_Optional_Functions_Modulo_8 != 0 && pval&PV_HDLC_Optional_Functions_Modulo_128 == 0 {
				result.modulo = 8
				*desc += "modulo-8 "
			} else if pval&PV_HDLC_Optional_Functions_Modulo_128 != 0 && pval&PV_HDLC_Optional_Functions_Modulo_8 == 0 {
				result.modulo = 128
				*desc += "modulo-128 "
			} else {
				dw_log.Error("XID error: Expected one of Modulo 8 or 128 to be set.")
			}

			if pval&PV_HDLC_Optional_Functions_TEST_cmd_resp == 0 {
				dw_log.Error("XID error: Expected TEST cmd/resp to be set.")
			}
			if pval&PV_HDLC_Optional_Functions_16_bit_FCS == 0 {
				dw_log.Error("XID error: Expected 16 bit FCS to be set.")
			}
			if pval&PV_HDLC_Optional_Functions_Synchronous_Tx == 0 {
				dw_log.Error("XID error: Expected Synchronous Tx to be set.")
			}

		case PI_I_Field_Length_Rx:

			result.i_field_length_rx = pval / 8
			*desc += fmt.Sprintf("I-Field-Length-Rx=%d ", result.i_field_length_rx)

			if pval&0x7 != 0 {
				dw_log.Error("XID error: I Field Length Rx is not a whole number of bytes.", "bits", pval)
			}

		case PI_Window_Size_Rx:

			result.window_size_rx = pval
			*desc += fmt.Sprintf("Window-Size-Rx=%d ", result.window_size_rx)

			if pval < 1 || pval > 127 {
				dw_log.Error("XID error: Window Size Rx is not in range of 1 thru 127.", "value", pval)
				result.window_size_rx = 127
				// Let the caller deal with the modulo 8 consideration.
			}

		case PI_Ack_Timer:
			result.ack_timer = pval
			*desc += fmt.Sprintf("Ack-Timer=%d ", result.ack_timer)

		case PI_Retries:
			result.retries = pval
			*desc += fmt.Sprintf("Retries=%d ", result.retries)

		default: // Ignore anything we don't recognize.
		}
	}

	if i != len(info) {
		dw_log.Error("XID error: Frame / Group Length mismatch.")
	}

	return true
}

/*-------------------------------------------------------------------
 *
 * Name:        xid_encode
 *
 * Purpose:    	Encode the information part of an XID frame.
 *
 * Inputs:	param	- The parameter values.  Use G_UNKNOWN for the
 *			  optional numeric fields to omit them.
 *
 *		cr	- Command or response?  A command offers a
 *			  "menu" of the acceptable REJ/SREJ choices;
 *			  a response picks a single one.
 *
 * Returns:	Information part of the XID frame.  At most 27 bytes.
 *
 * Description:	6.3.2  "Parameter negotiation occurs at any time.  It
 *		is accomplished by sending the XID command frame and
 *		receiving the XID response frame."  Negotiation of
 *		REJ/SREJ and modulo keeps the lower of what the two
 *		stations support.
 *
 *--------------------------------------------------------------------*/

func xid_encode(param *xid_param_s, cr cmdres_t) []byte {

	var info = make([]byte, 0, 40)

	info = append(info, FI_Format_Indicator)
	info = append(info, GI_Group_Identifier)
	info = append(info, 0)

	var m = 4 // classes of procedures
	m += 5    // HDLC optional features
	if param.i_field_length_rx != G_UNKNOWN {
		m += 4
	}
	if param.window_size_rx != G_UNKNOWN {
		m += 3
	}
	if param.ack_timer != G_UNKNOWN {
		m += 4
	}
	if param.retries != G_UNKNOWN {
		m += 3
	}

	info = append(info, byte(m)) // 0x17 if all present.

	// "Classes of Procedures" has half / full duplex.
	// We always send this.

	info = append(info, PI_Classes_of_Procedures, 2)

	var x = PV_Classes_Procedures_Balanced_ABM

	if param.full_duplex == 1 {
		x |= PV_Classes_Procedures_Full_Duplex
	} else { // includes G_UNKNOWN
		x |= PV_Classes_Procedures_Half_Duplex
	}

	info = append(info, byte(x>>8), byte(x))

	// "HDLC Optional Functions" contains REJ/SREJ & modulo 8/128.
	// We always send this.

	info = append(info, PI_HDLC_Optional_Functions, 3)

	x = PV_HDLC_Optional_Functions_Extended_Address |
		PV_HDLC_Optional_Functions_TEST_cmd_resp |
		PV_HDLC_Optional_Functions_16_bit_FCS |
		PV_HDLC_Optional_Functions_Synchronous_Tx

	if cr == cr_cmd {
		// Offer a menu of acceptable choices.  1, 2 or 3 bits set.
		switch param.srej {
		case srej_single:
			x |= PV_HDLC_Optional_Functions_REJ_cmd_resp |
				PV_HDLC_Optional_Functions_SREJ_cmd_resp
		case srej_multi:
			x |= PV_HDLC_Optional_Functions_REJ_cmd_resp |
				PV_HDLC_Optional_Functions_SREJ_cmd_resp |
				PV_HDLC_Optional_Functions_Multi_SREJ_cmd_resp
		default: // Includes srej_none.
			x |= PV_HDLC_Optional_Functions_REJ_cmd_resp
		}
	} else {
		// For a response, set only a single bit.
		switch param.srej {
		case srej_single:
			x |= PV_HDLC_Optional_Functions_SREJ_cmd_resp
		case srej_multi:
			x |= PV_HDLC_Optional_Functions_Multi_SREJ_cmd_resp
		default:
			x |= PV_HDLC_Optional_Functions_REJ_cmd_resp
		}
	}

	if param.modulo == 128 {
		x |= PV_HDLC_Optional_Functions_Modulo_128
	} else { // includes 8 and modulo_unknown
		x |= PV_HDLC_Optional_Functions_Modulo_8
	}

	info = append(info, byte(x>>16), byte(x>>8), byte(x))

	// "I Field Length Rx" - max I field length acceptable to me.
	// This is in bits.  8191 would be the max number of bytes to fit.

	if param.i_field_length_rx != G_UNKNOWN {
		x = param.i_field_length_rx * 8
		info = append(info, PI_I_Field_Length_Rx, 2, byte(x>>8), byte(x))
	}

	if param.window_size_rx != G_UNKNOWN {
		info = append(info, PI_Window_Size_Rx, 1, byte(param.window_size_rx))
	}

	// "Ack Timer" milliseconds.  We could handle up to 65535 here.

	if param.ack_timer != G_UNKNOWN {
		info = append(info, PI_Ack_Timer, 2, byte(param.ack_timer>>8), byte(param.ack_timer))
	}

	if param.retries != G_UNKNOWN {
		info = append(info, PI_Retries, 1, byte(param.retries))
	}

	/* Fill in the group length now that we know it. */

	var group_len = len(info) - 4
	info[2] = byte(group_len >> 8)
	info[3] = byte(group_len)

	return info
}
