package malamute

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_ax25_from_text_basic(t *testing.T) {
	var pp = ax25_from_text("W1ABC-5>TEST01,WIDE1-1,WIDE2-2:hello", true)
	require.NotNil(t, pp)

	assert.Equal(t, 4, pp.ax25_get_num_addr())
	assert.Equal(t, 2, pp.ax25_get_num_repeaters())
	assert.Equal(t, "W1ABC-5", pp.ax25_get_addr_with_ssid(AX25_SOURCE))
	assert.Equal(t, "TEST01", pp.ax25_get_addr_with_ssid(AX25_DESTINATION))
	assert.Equal(t, "WIDE1-1", pp.ax25_get_addr_with_ssid(AX25_REPEATER_1))
	assert.Equal(t, 5, pp.ax25_get_ssid(AX25_SOURCE))
	assert.Equal(t, "hello", string(pp.ax25_get_info()))
	assert.True(t, pp.ax25_is_aprs())
	assert.Equal(t, AX25_UI_FRAME, pp.ax25_get_control())
	assert.Equal(t, AX25_PID_NO_LAYER_3, pp.ax25_get_pid())
}

func Test_ax25_from_text_heard_star(t *testing.T) {
	// The "*" means this digipeater and all earlier ones have been used.
	var pp = ax25_from_text("W1XYZ>TEST,R1,R2*,WIDE3-2:info1", true)
	require.NotNil(t, pp)

	assert.True(t, pp.ax25_get_h(AX25_REPEATER_1))
	assert.True(t, pp.ax25_get_h(AX25_REPEATER_1+1))
	assert.False(t, pp.ax25_get_h(AX25_REPEATER_1+2))
	assert.Equal(t, AX25_REPEATER_1+1, pp.ax25_get_heard())
	assert.Equal(t, AX25_REPEATER_1+2, pp.ax25_get_first_not_repeated())
	assert.Equal(t, "W1XYZ>TEST,R1,R2*,WIDE3-2:", pp.ax25_format_addrs())
}

func Test_ax25_get_heard_source_when_no_h(t *testing.T) {
	var pp = ax25_from_text("W1ABC>TEST,WIDE1-1:x", true)
	require.NotNil(t, pp)
	assert.Equal(t, AX25_SOURCE, pp.ax25_get_heard())
}

func Test_ax25_from_text_hex_escape(t *testing.T) {
	var pp = ax25_from_text("A>B:'cQBl <0x1c>-/]<0x0d>", false)
	require.NotNil(t, pp)

	var info = pp.ax25_get_info()
	assert.Equal(t, byte(0x1c), info[6])
	assert.Equal(t, byte(0x0d), info[len(info)-1])
}

func Test_ax25_from_text_strict_rejects(t *testing.T) {
	assert.Nil(t, ax25_from_text("w1abc>TEST:x", true), "lower case source")
	assert.Nil(t, ax25_from_text("TOOLONG1>TEST:x", true), "address too long")
	assert.Nil(t, ax25_from_text("W1ABC-16>TEST:x", true), "SSID out of range")
	assert.Nil(t, ax25_from_text("W1ABC>TEST,qAR:x", true), "q-construct")
	assert.Nil(t, ax25_from_text("W1ABC TEST:x", true), "no destination")
	assert.Nil(t, ax25_from_text("W1ABC>TEST", true), "no colon")

	// Not strict is more forgiving about some of these.
	assert.NotNil(t, ax25_from_text("w1abc>TEST:x", false))
}

func Test_ax25_set_info(t *testing.T) {
	var p = ax25_from_text("D>E,F:info", true)
	require.NotNil(t, p)
	assert.Equal(t, "info", string(p.ax25_get_info()))

	p.ax25_set_info([]byte("badger"))

	assert.Equal(t, "badger", string(p.ax25_get_info()))
	assert.Equal(t, "D>E,F:", p.ax25_format_addrs())
}

func Test_ax25_unwrap_third_party(t *testing.T) {
	var pp = ax25_from_text("A>B,C:}D>E,F:info", true)
	require.NotNil(t, pp)
	var pp2 = ax25_unwrap_third_party(pp)
	require.NotNil(t, pp2)
	assert.Equal(t, "D>E,F:", pp2.ax25_format_addrs())
}

func Test_ax25_set_addr_replace_and_append(t *testing.T) {
	var pp = ax25_from_text("W1ABC>TEST:x", true)
	require.NotNil(t, pp)

	// Replace destination.
	pp.ax25_set_addr(AX25_DESTINATION, "BEACON")
	assert.Equal(t, "W1ABC>BEACON:", pp.ax25_format_addrs())

	// n == num_addr appends.
	pp.ax25_set_addr(2, "WIDE2-2")
	assert.Equal(t, 3, pp.ax25_get_num_addr())
	assert.Equal(t, "W1ABC>BEACON,WIDE2-2:", pp.ax25_format_addrs())
	assert.Equal(t, "x", string(pp.ax25_get_info()))
}

func Test_ax25_insert_remove_addr(t *testing.T) {
	var pp = ax25_from_text("W1ABC>TEST,R1,R2:x", true)
	require.NotNil(t, pp)

	pp.ax25_insert_addr(AX25_REPEATER_1, "WB2OSZ-9")
	assert.Equal(t, "W1ABC>TEST,WB2OSZ-9,R1,R2:", pp.ax25_format_addrs())

	pp.ax25_remove_addr(AX25_REPEATER_1)
	assert.Equal(t, "W1ABC>TEST,R1,R2:", pp.ax25_format_addrs())
	assert.Equal(t, "x", string(pp.ax25_get_info()))
}

func Test_ax25_insert_remove_is_identity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var ndigis = rapid.IntRange(0, 7).Draw(t, "ndigis")

		var text = "W1ABC-1>APRS"
		for i := 0; i < ndigis; i++ {
			text += fmt.Sprintf(",D%d", i)
		}
		text += ":payload"

		var pp = ax25_from_text(text, true)
		require.NotNil(t, pp)
		var before = append([]byte{}, pp.frame_data...)

		var n = rapid.IntRange(AX25_REPEATER_1, pp.ax25_get_num_addr()).Draw(t, "n")
		pp.ax25_insert_addr(n, "WB2OSZ-9")
		pp.ax25_remove_addr(n)

		assert.Equal(t, before, pp.frame_data)
	})
}

func Test_ax25_frame_roundtrip(t *testing.T) {
	// from_frame(pack(p)) equals p structurally.
	rapid.Check(t, func(t *rapid.T) {
		var addr_gen = rapid.StringMatching(`[A-Z][A-Z0-9]{0,5}`)

		var text = addr_gen.Draw(t, "src")
		var ssid = rapid.IntRange(0, 15).Draw(t, "ssid")
		if ssid > 0 {
			text += fmt.Sprintf("-%d", ssid)
		}
		text += ">" + addr_gen.Draw(t, "dst")
		var ndigis = rapid.IntRange(0, 8).Draw(t, "ndigis")
		for i := 0; i < ndigis; i++ {
			text += "," + addr_gen.Draw(t, fmt.Sprintf("digi%d", i))
		}
		text += ":" + rapid.StringMatching(`[ -~]{0,50}`).Draw(t, "info")

		var pp = ax25_from_text(text, true)
		require.NotNil(t, pp)

		var pp2 = ax25_from_frame(pp.ax25_pack(), alevel_t{})
		require.NotNil(t, pp2)

		assert.Equal(t, pp.ax25_get_num_addr(), pp2.ax25_get_num_addr())
		assert.Equal(t, pp.ax25_format_addrs(), pp2.ax25_format_addrs())
		assert.Equal(t, pp.ax25_get_info(), pp2.ax25_get_info())
		assert.Equal(t, pp.frame_data, pp2.frame_data)
	})
}

func Test_ax25_text_roundtrip(t *testing.T) {
	// format_addrs + info reproduces the original strict monitor text.
	for _, text := range []string{
		"W1ABC>TEST01:",
		"W1ABC-15>TEST01,WIDE1-1:hello world",
		"W1XYZ>TEST,R1*,WIDE3-2:info1",
		"N3LEE-7>APDW12,WIDE2-2:!4237.14NS07120.83W#PHG7140Chelmsford MA",
	} {
		var pp = ax25_from_text(text, true)
		require.NotNil(t, pp, text)
		assert.Equal(t, text, pp.ax25_format_addrs()+string(pp.ax25_get_info()))
	}
}

func Test_ax25_from_frame_length_limits(t *testing.T) {
	assert.Nil(t, ax25_from_frame(make([]byte, AX25_MIN_PACKET_LEN-1), alevel_t{}))
	assert.Nil(t, ax25_from_frame(make([]byte, AX25_MAX_PACKET_LEN+1), alevel_t{}))
}

func Test_ax25_dup_is_independent(t *testing.T) {
	var pp = ax25_from_text("W1ABC>TEST,WIDE2-2:x", true)
	require.NotNil(t, pp)

	var pp2 = ax25_dup(pp)
	pp2.ax25_set_addr(AX25_REPEATER_1, "WB2OSZ-9")
	pp2.ax25_set_h(AX25_REPEATER_1)

	assert.Equal(t, "W1ABC>TEST,WIDE2-2:", pp.ax25_format_addrs())
	assert.Equal(t, "W1ABC>TEST,WB2OSZ-9*:", pp2.ax25_format_addrs())
	assert.NotEqual(t, pp.seq, pp2.seq)
}

func Test_ax25_frame_type(t *testing.T) {
	// UI frame, the usual APRS case.
	var pp = ax25_from_text("W1ABC>TEST:x", true)
	require.NotNil(t, pp)
	var ftype, _, desc, _, _, _ = pp.ax25_frame_type()
	assert.Equal(t, frame_type_U_UI, ftype)
	assert.True(t, strings.HasPrefix(desc, "UI"))

	// SABM, modulo 8.
	var sabm = ax25_u_frame([]string{"W2UB", "N2GH"}, cr_cmd, frame_type_U_SABM, 1, 0, nil)
	require.NotNil(t, sabm)
	ftype, cr, _, pf, _, _ := sabm.ax25_frame_type()
	assert.Equal(t, frame_type_U_SABM, ftype)
	assert.Equal(t, cr_cmd, cr)
	assert.Equal(t, 1, pf)

	// XID response with info.
	var xid = ax25_u_frame([]string{"W2UB", "N2GH"}, cr_res, frame_type_U_XID, 1, 0, []byte{0x82, 0x80, 0x00, 0x00})
	require.NotNil(t, xid)
	ftype, cr, _, _, _, _ = xid.ax25_frame_type()
	assert.Equal(t, frame_type_U_XID, ftype)
	assert.Equal(t, cr_res, cr)
}

func Test_ax25_dedupe_crc_ignores_path_and_trailing_space(t *testing.T) {
	var a = ax25_from_text("W1ABC>TEST,WIDE2-2:hello", true)
	var b = ax25_from_text("W1ABC>TEST,WB2OSZ-9*,WIDE2-1:hello", true)
	var c = ax25_from_text("W1ABC>TEST:hello \r\n", true)
	var d = ax25_from_text("W1ABC>TEST:different", true)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)
	require.NotNil(t, d)

	assert.Equal(t, a.ax25_dedupe_crc(), b.ax25_dedupe_crc())
	assert.Equal(t, a.ax25_dedupe_crc(), c.ax25_dedupe_crc())
	assert.NotEqual(t, a.ax25_dedupe_crc(), d.ax25_dedupe_crc())
}

func Test_ax25_m_m_crc_sees_whole_frame(t *testing.T) {
	var a = ax25_from_text("W1ABC>TEST,WIDE2-2:hello", true)
	var b = ax25_from_text("W1ABC>TEST,WIDE2-1:hello", true)
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.NotEqual(t, a.ax25_m_m_crc(), b.ax25_m_m_crc())
	assert.Equal(t, a.ax25_m_m_crc(), ax25_dup(a).ax25_m_m_crc())
}

func Test_ax25_safe_print(t *testing.T) {
	assert.Equal(t, "abc<0x0a>", ax25_safe_print([]byte("abc\n"), false))
	assert.Equal(t, "x<0x20>", ax25_safe_print([]byte("x "), false))
}

func Test_ax25_alevel_to_text(t *testing.T) {
	assert.Equal(t, "99(98/97)", ax25_alevel_to_text(alevel_t{rec: 99, mark: 98, space: 97}))
	assert.Equal(t, "50", ax25_alevel_to_text(alevel_t{rec: 50, mark: -1, space: -1}))
	assert.Equal(t, "", ax25_alevel_to_text(alevel_t{rec: -1}))
}

func Test_ax25_get_dti(t *testing.T) {
	var pp = ax25_from_text("W1ABC>TEST::W1AW     :hi", true)
	require.NotNil(t, pp)
	assert.Equal(t, byte(':'), pp.ax25_get_dti())

	var sabm = ax25_u_frame([]string{"W2UB", "N2GH"}, cr_cmd, frame_type_U_SABM, 1, 0, nil)
	require.NotNil(t, sabm)
	assert.Equal(t, byte(' '), sabm.ax25_get_dti())
}
