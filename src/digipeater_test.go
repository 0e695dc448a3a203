package malamute

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
 * These scenarios follow the behavior of the known good APRS
 * digipeaters, with the receive mycall WB2OSZ-9.
 */

func digi_fixture(t *testing.T) *digipeater_s {
	t.Helper()

	var pa = audio_config_defaults()
	pa.chan_medium[0] = MEDIUM_RADIO
	pa.chan_medium[1] = MEDIUM_RADIO
	pa.achan[0].mycall = "WB2OSZ-9"
	pa.achan[1].mycall = "WB2OSZ-9"

	var dc = &digi_config_s{dedupe_time: 4 * time.Second}
	for _, to_chan := range []int{0, 1} {
		dc.rule[0][to_chan] = digi_rule_s{
			enabled: true,
			alias:   regexp.MustCompile(`^WIDE[4-7]-[1-7]|CITYD$`),
			wide:    regexp.MustCompile(`^WIDE[1-7]-[1-7]$|^TRACE[1-7]-[1-7]$|^MA[1-7]-[1-7]$`),
			preempt: PREEMPT_OFF,
		}
	}

	return digipeater_init(pa, dc, tq_init(pa))
}

func digi_expect(t *testing.T, dg *digipeater_s, input string, expected string) {
	t.Helper()

	var pp = ax25_from_text(input, true)
	require.NotNil(t, pp, input)

	var result = dg.digipeat_match(0, pp, 0)
	if expected == "" {
		assert.Nil(t, result, input)
		return
	}
	require.NotNil(t, result, input)
	assert.Equal(t, expected, result.ax25_format_addrs()+string(result.ax25_get_info()))
}

func Test_digipeater_explicit_path(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST01,TRACE3-3:", "W1ABC>TEST01,WB2OSZ-9*,TRACE3-2:")
}

func Test_digipeater_wide_decrement_at_end(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST03,WIDE3-2:", "W1ABC>TEST03,WB2OSZ-9*,WIDE3-1:")
}

func Test_digipeater_wide_last_hop(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST05,WIDE1-1:", "W1ABC>TEST05,WB2OSZ-9*:")
}

func Test_digipeater_trap_oversized_n(t *testing.T) {
	// WIDE4-4 matches the "trap" alias so it is repeated only once.
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST21,WIDE4-4:", "W1ABC>TEST21,WB2OSZ-9*:")
}

func Test_digipeater_destination_ssid_translation(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST-3:", "W1ABC>TEST,WB2OSZ-9*,WIDE3-2:")
}

func Test_digipeater_destination_ssid_directional(t *testing.T) {
	// SSID 8..15 map onto the WIDE1-1 / WIDE2-2 paths.
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST-9:", "W1ABC>TEST,WB2OSZ-9*:")
	digi_expect(t, dg, "W1DEF>TEST-12:", "W1DEF>TEST,WB2OSZ-9*,WIDE2-1:")
}

func Test_digipeater_ssid_translation_input_unchanged(t *testing.T) {
	var dg = digi_fixture(t)

	var pp = ax25_from_text("W1ABC>TEST-3:", true)
	require.NotNil(t, pp)
	require.NotNil(t, dg.digipeat_match(0, pp, 0))

	assert.Equal(t, "W1ABC>TEST-3:", pp.ax25_format_addrs())
	assert.Equal(t, 0, pp.ax25_get_num_repeaters())
}

func Test_digipeater_explicit_mycall(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST11,WB2OSZ-9:", "W1ABC>TEST11,WB2OSZ-9*:")
}

func Test_digipeater_explicit_mycall_bypasses_dedupe(t *testing.T) {
	var dg = digi_fixture(t)

	var pp = ax25_from_text("W1ABC>TEST11,WB2OSZ-9:hello", true)
	require.NotNil(t, pp)

	dg.digipeater(0, pp)
	dg.digipeater(0, pp)

	assert.Equal(t, 2, dg.digipeater_get_count(0, 0))
}

func Test_digipeater_all_used_is_dropped(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST13,R1*,R2*:", "")
}

func Test_digipeater_own_source_not_repeated(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "WB2OSZ-9>TEST,WIDE2-2:", "")
}

func Test_digipeater_large_ssid_dropped(t *testing.T) {
	// The wide pattern allows only 1 - 7 and anything else in the
	// SSID position is not eligible.
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST,WIDE3:", "")
}

func Test_digipeater_dedupe_suppression(t *testing.T) {
	var dg = digi_fixture(t)

	var send = func() *packet_t {
		var pp = ax25_from_text("W1XYZ>TEST,R1*,WIDE3-2:info1", true)
		require.NotNil(t, pp)
		dg.digipeater(0, pp)
		return dg.tq.tq_remove(0, TQ_PRIO_0_HI)
	}

	var first = send()
	require.NotNil(t, first)
	assert.Equal(t, "W1XYZ>TEST,R1,WB2OSZ-9*,WIDE3-1:info1",
		first.ax25_format_addrs()+string(first.ax25_get_info()))

	/* The next two, within the retention window, yield no output. */
	assert.Nil(t, send())
	assert.Nil(t, send())

	/* After the window expires it goes out again. */
	dg.dedupe.now = func() time.Time { return time.Now().Add(5 * time.Second) }
	assert.NotNil(t, send())
}

func Test_digipeater_same_channel_high_priority(t *testing.T) {
	var dg = digi_fixture(t)

	var pp = ax25_from_text("W1ABC>TEST,WIDE2-2:priorities", true)
	require.NotNil(t, pp)
	dg.digipeater(0, pp)

	assert.NotNil(t, dg.tq.tq_remove(0, TQ_PRIO_0_HI))

	/* Cross channel copies are lower priority. */
	var pp2 = ax25_from_text("W1ABC>TEST,WIDE2-2:cross channel", true)
	require.NotNil(t, pp2)
	dg.digipeater(0, pp2)

	assert.Nil(t, dg.tq.tq_remove(1, TQ_PRIO_0_HI))
	assert.NotNil(t, dg.tq.tq_remove(1, TQ_PRIO_1_LO))
}

func Test_digipeater_preempt_trace(t *testing.T) {
	var dg = digi_fixture(t)
	dg.config.rule[0][0].preempt = PREEMPT_TRACE

	// CITYD further down the path matches the alias; earlier unused
	// digis are removed so the via path records the actual journey.
	digi_expect(t, dg, "W1ABC>TEST31,R1,CITYD,R3:", "W1ABC>TEST31,WB2OSZ-9*,R3:")
}

func Test_digipeater_preempt_mark(t *testing.T) {
	var dg = digi_fixture(t)
	dg.config.rule[0][0].preempt = PREEMPT_MARK

	digi_expect(t, dg, "W1ABC>TEST32,R1,CITYD,R3:", "W1ABC>TEST32,R1,WB2OSZ-9*,R3:")

	/* The earlier address is now marked as used. */
	var pp = ax25_from_text("W1ABC>TEST32B,R1,CITYD,R3:", true)
	require.NotNil(t, pp)
	var result = dg.digipeat_match(0, pp, 0)
	require.NotNil(t, result)
	assert.True(t, result.ax25_get_h(AX25_REPEATER_1))
}

func Test_digipeater_preempt_drop(t *testing.T) {
	var dg = digi_fixture(t)
	dg.config.rule[0][0].preempt = PREEMPT_DROP

	digi_expect(t, dg, "W1ABC>TEST33,R1,CITYD,R3:", "W1ABC>TEST33,WB2OSZ-9*,R3:")
}

func Test_digipeater_preempt_off_no_scan(t *testing.T) {
	var dg = digi_fixture(t)
	digi_expect(t, dg, "W1ABC>TEST34,R1,CITYD,R3:", "")
}

func Test_digipeater_filter_rejects(t *testing.T) {
	var dg = digi_fixture(t)

	var filter, err = pfilter_compile("b/W9XYZ*")
	require.NoError(t, err)
	dg.config.rule[0][0].filter = filter

	digi_expect(t, dg, "W1ABC>TEST41,WIDE2-2:", "")
	digi_expect(t, dg, "W9XYZ-3>TEST42,WIDE2-2:", "W9XYZ-3>TEST42,WB2OSZ-9*,WIDE2-1:")
}

func Test_digipeater_max_repeaters_just_decrements(t *testing.T) {
	// With 8 addresses already there is no room to insert mycall.
	var dg = digi_fixture(t)
	digi_expect(t, dg,
		"W1ABC>TEST51,R1*,R2*,R3*,R4*,R5*,R6*,R7*,WIDE2-2:",
		"W1ABC>TEST51,R1,R2,R3,R4,R5,R6,R7*,WIDE2-1:")
}
