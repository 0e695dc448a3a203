package malamute

/*------------------------------------------------------------------
 *
 * Name:	ax25_pad2
 *
 * Purpose:	Construct frames other than the APRS UI case that
 *		ax25_from_text handles: U frames such as XID and TEST
 *		used for parameter negotiation.
 *
 * Description:	The command/response distinction lives in the C bits
 *		of the destination and source SSID octets.  A command
 *		sets the destination C bit, a response the source C bit.
 *
 *------------------------------------------------------------------*/

/*------------------------------------------------------------------------------
 *
 * Name:	ax25_u_frame
 *
 * Purpose:	Construct a U frame.
 *
 * Inputs:	addrs	- Destination, source, and optional digipeaters.
 *
 *		cr	- cr_cmd or cr_res.
 *
 *		ftype	- One of the frame_type_U_* values.
 *
 *		pf	- Poll/Final flag, 0 or 1.
 *
 *		pid	- Protocol ID, used only for UI frames.
 *
 *		pinfo	- Information part, permitted only for UI, XID,
 *			  TEST, and FRMR.
 *
 * Returns:	Pointer to new packet object, or nil when the number
 *		of addresses is out of range, an address does not
 *		parse, or ftype is not a U frame type.  An invalid cr,
 *		or an information part that ftype does not permit or
 *		that is too long, is logged and the packet is still
 *		returned, without that information part.
 *
 *------------------------------------------------------------------------------*/

func ax25_u_frame(addrs []string, cr cmdres_t, ftype ax25_frame_type_t, pf int, pid int, pinfo []byte) *packet_t {

	if len(addrs) < AX25_MIN_ADDRS || len(addrs) > AX25_MAX_ADDRS {
		dw_log.Error("Internal error in ax25_u_frame: number of addresses out of range.", "num_addr", len(addrs))
		return nil
	}

	var ctrl int
	var info_ok bool

	switch ftype {
	case frame_type_U_SABME:
		ctrl, info_ok = 0x6f, false
	case frame_type_U_SABM:
		ctrl, info_ok = 0x2f, false
	case frame_type_U_DISC:
		ctrl, info_ok = 0x43, false
	case frame_type_U_DM:
		ctrl, info_ok = 0x0f, false
	case frame_type_U_UA:
		ctrl, info_ok = 0x63, false
	case frame_type_U_FRMR:
		ctrl, info_ok = 0x87, true
	case frame_type_U_UI:
		ctrl, info_ok = 0x03, true
	case frame_type_U_XID:
		ctrl, info_ok = 0xaf, true
	case frame_type_U_TEST:
		ctrl, info_ok = 0xe3, true
	default:
		dw_log.Error("Internal error in ax25_u_frame: not a U frame type.", "ftype", int(ftype))
		return nil
	}

	if pf != 0 {
		ctrl |= 0x10
	}

	var this_p = ax25_new()
	this_p.frame_data = make([]byte, 0, len(addrs)*7+2+len(pinfo))
	this_p.num_addr = 0

	for n, ad := range addrs {
		var addr, ssid, _, ok = ax25_parse_addr(n, ad, false)
		if !ok {
			return nil
		}
		for i := 0; i < 6; i++ {
			var c byte = ' '
			if i < len(addr) {
				c = addr[i]
			}
			this_p.frame_data = append(this_p.frame_data, c<<1)
		}
		this_p.frame_data = append(this_p.frame_data, SSID_RR_MASK|byte(ssid<<SSID_SSID_SHIFT))
		this_p.num_addr++
	}
	this_p.fix_last_addr_flag()

	switch cr {
	case cr_cmd:
		this_p.frame_data[AX25_DESTINATION*7+6] |= SSID_H_MASK
	case cr_res:
		this_p.frame_data[AX25_SOURCE*7+6] |= SSID_H_MASK
	default:
		dw_log.Error("Internal error in ax25_u_frame: Set cmd or res.")
	}

	this_p.frame_data = append(this_p.frame_data, byte(ctrl))

	if ftype == frame_type_U_UI {
		this_p.frame_data = append(this_p.frame_data, byte(pid))
	}

	if len(pinfo) > 0 {
		if !info_ok {
			dw_log.Error("Internal error in ax25_u_frame: Info part not allowed for this frame type.")
		} else if len(pinfo) > AX25_MAX_INFO_LEN {
			dw_log.Error("Internal error in ax25_u_frame: Info part too long.", "len", len(pinfo))
		} else {
			this_p.frame_data = append(this_p.frame_data, pinfo...)
		}
	}

	return this_p
}
