package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Raw Received Bit Buffer.
 *		An array of bits used to hold data out of the
 *		demodulator before feeding it into the HDLC decoding.
 *
 * Description:	The initial state of the descrambler is saved with the
 *		bits so the bit fix up stage can replay decoding of
 *		scrambled data from the same starting point.
 *
 *------------------------------------------------------------------*/

/*
 * Maximum number of bits in an AX.25 frame excluding the flags.
 * Adequate for the extreme case of bit stuffing after every 5 bits
 * which could never happen.
 */

const MAX_NUM_BITS = MAX_FRAME_LEN * 8 * 6 / 5

type rrbb_t struct {
	channel    int /* Radio channel from which it was received. */
	subchannel int /* Which modem when more than one per channel. */
	slice      int /* Which slicer. */

	alevel alevel_t /* Received audio level at time of frame capture. */

	is_scrambled  bool /* Is data scrambled G3RUH / K9NG style? */
	descram_state int  /* 17 bit descrambler state before first data bit of frame. */
	prev_descram  bool /* Previous descrambled bit. */

	fdata []byte /* One byte per bit.  Bytes are cheaper than packing. */
}

func rrbb_new(channel int, subchannel int, slice int, is_scrambled bool, descram_state int, prev_descram bool) *rrbb_t {

	var b = &rrbb_t{
		channel:    channel,
		subchannel: subchannel,
		slice:      slice,
		fdata:      make([]byte, 0, 1024),
	}
	b.rrbb_clear(is_scrambled, descram_state, prev_descram)
	return b
}

/* Clear by setting length to zero, keeping the identity. */

func (b *rrbb_t) rrbb_clear(is_scrambled bool, descram_state int, prev_descram bool) {
	b.alevel = alevel_t{rec: -1, mark: -1, space: -1}
	b.fdata = b.fdata[:0]
	b.is_scrambled = is_scrambled
	b.descram_state = descram_state
	b.prev_descram = prev_descram
}

func (b *rrbb_t) rrbb_append_bit(val byte) {
	if len(b.fdata) >= MAX_NUM_BITS {
		return /* Silently discard if full. */
	}
	b.fdata = append(b.fdata, val)
}

/* Back up after appending the flag sequence. */

func (b *rrbb_t) rrbb_chop8() {
	if len(b.fdata) >= 8 {
		b.fdata = b.fdata[:len(b.fdata)-8]
	}
}

func (b *rrbb_t) rrbb_get_len() int {
	return len(b.fdata)
}

func (b *rrbb_t) rrbb_get_bit(ind int) byte {
	return b.fdata[ind]
}

func (b *rrbb_t) rrbb_flip_bit(ind int) {
	b.fdata[ind] ^= 1
}

func (b *rrbb_t) rrbb_get_chan() int {
	return b.channel
}

func (b *rrbb_t) rrbb_get_subchan() int {
	return b.subchannel
}

func (b *rrbb_t) rrbb_get_slice() int {
	return b.slice
}

func (b *rrbb_t) rrbb_set_audio_level(alevel alevel_t) {
	b.alevel = alevel
}

func (b *rrbb_t) rrbb_get_audio_level() alevel_t {
	return b.alevel
}

func (b *rrbb_t) rrbb_get_is_scrambled() bool {
	return b.is_scrambled
}

func (b *rrbb_t) rrbb_get_descram_state() int {
	return b.descram_state
}

func (b *rrbb_t) rrbb_get_prev_descram() bool {
	return b.prev_descram
}
