package malamute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pfilter_must(t *testing.T, expr string) *pfilter_t {
	t.Helper()
	var pf, err = pfilter_compile(expr)
	require.NoError(t, err, expr)
	return pf
}

func Test_pfilter_budlist(t *testing.T) {
	var pf = pfilter_must(t, "b/W1ABC/N2XYZ-3")

	assert.True(t, pf.pfilter_eval(ax25_from_text("W1ABC>APRS:x", true)))
	assert.True(t, pf.pfilter_eval(ax25_from_text("N2XYZ-3>APRS:x", true)))
	assert.False(t, pf.pfilter_eval(ax25_from_text("N2XYZ>APRS:x", true)))
	assert.False(t, pf.pfilter_eval(ax25_from_text("K4ABC>APRS:x", true)))
}

func Test_pfilter_wildcard(t *testing.T) {
	var pf = pfilter_must(t, "b/W1*")

	assert.True(t, pf.pfilter_eval(ax25_from_text("W1ABC-5>APRS:x", true)))
	assert.False(t, pf.pfilter_eval(ax25_from_text("W2ABC>APRS:x", true)))
}

func Test_pfilter_digipeated_and_via(t *testing.T) {
	var pp = ax25_from_text("W1ABC>APRS,R1*,WIDE2-2:x", true)
	require.NotNil(t, pp)

	assert.True(t, pfilter_must(t, "d/R1").pfilter_eval(pp))
	assert.False(t, pfilter_must(t, "d/WIDE2-2").pfilter_eval(pp))
	assert.True(t, pfilter_must(t, "v/WIDE2-2").pfilter_eval(pp))
	assert.False(t, pfilter_must(t, "v/R1").pfilter_eval(pp))
}

func Test_pfilter_type(t *testing.T) {
	var position = ax25_from_text("W1ABC>APRS:!4237.14N/07120.83W#", true)
	var message = ax25_from_text("W1ABC>APRS::W1AW     :hello", true)
	var status = ax25_from_text("W1ABC>APRS:>status text", true)

	assert.True(t, pfilter_must(t, "t/p").pfilter_eval(position))
	assert.False(t, pfilter_must(t, "t/p").pfilter_eval(message))
	assert.True(t, pfilter_must(t, "t/m").pfilter_eval(message))
	assert.True(t, pfilter_must(t, "t/ps").pfilter_eval(status))
}

func Test_pfilter_boolean_operators(t *testing.T) {
	var pp = ax25_from_text("W1ABC>APRS,R1*:>status", true)
	require.NotNil(t, pp)

	assert.True(t, pfilter_must(t, "b/W1ABC & t/s").pfilter_eval(pp))
	assert.False(t, pfilter_must(t, "b/W1ABC & t/m").pfilter_eval(pp))
	assert.True(t, pfilter_must(t, "b/W1ABC | t/m").pfilter_eval(pp))
	assert.True(t, pfilter_must(t, "! b/K9XYZ").pfilter_eval(pp))
	assert.True(t, pfilter_must(t, "( b/K9XYZ | d/R1 ) & t/s").pfilter_eval(pp))
}

func Test_pfilter_compile_errors(t *testing.T) {
	for _, bad := range []string{
		"",
		"x/FOO",
		"b/W1ABC &",
		"( b/W1ABC",
		"b/W1ABC extra",
	} {
		var _, err = pfilter_compile(bad)
		assert.Error(t, err, bad)
	}
}
