package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Data Carrier Detect based on DPLL lock rather than
 *		data patterns.
 *
 * Description:	At each signal transition we note whether the DPLL
 *		phase was close to where a transition belongs.  The
 *		running score of good versus bad transitions, with
 *		hysteresis, decides whether a signal is present.
 *
 *------------------------------------------------------------------*/

import "math/bits"

type DCDConfig struct {
	DCD_THRESH_ON int

	DCD_THRESH_OFF int

	// No more than 1024!!!
	DCD_GOOD_WIDTH int
}

// These values are good for 1200 bps AFSK.
// Might want to override for other modems.
func GenericDCDConfig() *DCDConfig {
	return &DCDConfig{
		// Hysteresis: Can miss 2 out of 32 for detecting lock.
		// 31 is best for TNC Test CD.  30 almost as good.
		// 30 better for 1200 regression test.
		DCD_THRESH_ON:  30,
		DCD_THRESH_OFF: 6,
		DCD_GOOD_WIDTH: 512,
	}
}

func pll_dcd_signal_transition2(dcdConfig *DCDConfig, D *demodulator_state_s, slice int, dpll_phase int32) {
	if dpll_phase > int32(-dcdConfig.DCD_GOOD_WIDTH*1024*1024) && dpll_phase < int32(dcdConfig.DCD_GOOD_WIDTH*1024*1024) {
		D.slicer[slice].good_flag = true
	} else {
		D.slicer[slice].bad_flag = true
	}
}

func (rx *rx_s) pll_dcd_each_symbol2(dcdConfig *DCDConfig, D *demodulator_state_s, channel int, subchan int, slice int) {
	var S = &D.slicer[slice]

	S.good_hist <<= 1
	if S.good_flag {
		S.good_hist |= 1
	}
	S.good_flag = false

	S.bad_hist <<= 1
	if S.bad_flag {
		S.bad_hist |= 1
	}
	S.bad_flag = false

	S.score <<= 1
	// 2 is to detect 'flag' patterns with 2 transitions per octet.
	if bits.OnesCount8(S.good_hist)-bits.OnesCount8(S.bad_hist) >= 2 {
		S.score |= 1
	}

	var s = bits.OnesCount32(S.score)
	if s >= dcdConfig.DCD_THRESH_ON {
		if !S.data_detect {
			S.data_detect = true
			rx.dcd_change(channel, subchan, slice, true)
		}
	} else if s <= dcdConfig.DCD_THRESH_OFF {
		if S.data_detect {
			S.data_detect = false
			rx.dcd_change(channel, subchan, slice, false)
		}
	}
}
