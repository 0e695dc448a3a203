package malamute

/*
 * State of one demodulator instance (a "subchannel").
 */

type bp_window_t int

const (
	BP_WINDOW_TRUNCATED bp_window_t = iota
	BP_WINDOW_COSINE
	BP_WINDOW_HAMMING
	BP_WINDOW_BLACKMAN
	BP_WINDOW_FLATTOP
)

const MAX_FILTER_SIZE = 480 /* 411 is needed for profile A, 300 baud & 44100 without decimation. */

/*
 * The digital phase locked loop runs on a 32 bit counter that
 * overflows once per symbol.
 */

const TICKS_PER_PLL_CYCLE = 256.0 * 256.0 * 256.0 * 256.0

/*
 * Each slicer has its own PLL and HDLC decoder.
 */

type slicer_state_s struct {
	data_clock_pll int32 /* Sample when it overflows. */

	prev_d_c_pll int32 /* Previous value so we can look for overflow. */

	prev_demod_data bool /* Previous data bit from the demodulator, */
	/* used to look for transitions. */

	data_detect bool /* True when PLL is locked to valid signal. */

	good_flag bool /* Set if transition is near where expected. */
	bad_flag  bool /* Set if transition is not where expected. */

	good_hist byte /* History of good transitions for past octet. */
	bad_hist  byte /* History of bad transitions for past octet. */

	score uint32 /* History of whether good triumphs over bad */
	/* for the past 32 octets. */

	prev_demod_out_f float64 /* Baseband: previous output for zero */
	/* crossing interpolation. */
}

type afsk_only_s struct {
	m_osc_phase uint32 /* Phase for Mark local oscillator. */
	m_osc_delta uint32 /* How much to change for each audio sample. */

	s_osc_phase uint32 /* Phase for Space local oscillator. */
	s_osc_delta uint32

	c_osc_phase uint32 /* Phase for Center frequency local oscillator. */
	c_osc_delta uint32

	m_I_raw [MAX_FILTER_SIZE]float64 /* Mark and Space in phase and quadrature */
	m_Q_raw [MAX_FILTER_SIZE]float64 /* signals before filtering. */
	s_I_raw [MAX_FILTER_SIZE]float64
	s_Q_raw [MAX_FILTER_SIZE]float64

	c_I_raw [MAX_FILTER_SIZE]float64 /* Same, for the mixed down center of profile B. */
	c_Q_raw [MAX_FILTER_SIZE]float64

	use_rrc bool /* Use RRC rather than generic low pass. */

	rrc_width_sym float64 /* Width of RRC filter in number of symbols. */
	rrc_rolloff   float64 /* Rolloff factor for RRC. */

	prev_phase float64 /* To see phase shift between samples for FM demod. */

	normalize_rpsam float64 /* Normalize to -1 to +1 for expected tones. */
}

type baseband_only_s struct {
	audio_in [MAX_FILTER_SIZE]float64 /* Samples in, for the low pass filter. */

	lp_polyphase [4][MAX_FILTER_SIZE]float64 /* The low pass filter scattered */
	/* across shorter filters so upsampling doesn't multiply by the */
	/* stuffed zeros. */
}

type demodulator_state_s struct {
	/*
	 * These are set once during initialization.
	 */
	modem_type modem_t

	profile byte /* 'A', 'B', etc.  Upper case. */

	pll_step_per_sample int32 /* PLL is advanced by this much each audio */
	/* sample.  Data is sampled when it overflows. */

	lp_window bp_window_t

	lpf_baud            float64 /* Cutoff frequency as fraction of baud. */
	lp_filter_width_sym float64 /* Length in number of symbol times. */
	lp_filter_taps      int     /* Size of low pass filter, in audio samples. */

	/*
	 * Automatic gain control.  Fast attack and slow decay factors.
	 */
	agc_fast_attack float64
	agc_slow_decay  float64

	/*
	 * Use a longer term view for reporting signal levels.
	 */
	quick_attack   float64
	sluggish_decay float64

	num_slicers int /* >1 for multiple slicers. */

	/*
	 * Phase Locked Loop (PLL) inertia.
	 * Larger number means less influence by signal transitions.
	 */
	pll_locked_inertia    float64
	pll_searching_inertia float64

	/*
	 * Optional band pass pre-filter before mark/space detector.
	 */
	use_prefilter bool

	prefilter_baud float64 /* Cutoff frequencies, as fraction of baud rate, */
	/* beyond the tones used. */

	pre_filter_len_sym float64 /* Length in number of symbol times. */

	pre_window bp_window_t

	pre_filter_taps int

	pre_filter [MAX_FILTER_SIZE]float64

	raw_cb [MAX_FILTER_SIZE]float64 /* Audio samples in, for the prefilter. */

	/*
	 * The rest are continuously updated.
	 */

	alevel_rec_peak   float64
	alevel_rec_valley float64
	alevel_mark_peak  float64
	alevel_space_peak float64

	lp_filter [MAX_FILTER_SIZE]float64

	m_peak, s_peak     float64
	m_valley, s_valley float64

	u struct { /* Distinct state for the different demodulator families. */
		afsk afsk_only_s
		bb   baseband_only_s
	}

	slice_point [MAX_SLICERS]float64

	slicer [MAX_SLICERS]slicer_state_s
}
