package malamute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_dedupe_remember_then_check(t *testing.T) {
	var d = dedupe_init(30 * time.Second)

	var pp = ax25_from_text("W1ABC>TEST,WIDE2-2:hello", true)
	require.NotNil(t, pp)

	assert.False(t, d.dedupe_check(pp, 0))

	d.dedupe_remember(pp, 0)
	assert.True(t, d.dedupe_check(pp, 0))

	/* Same packet with a different via path is still a duplicate. */
	var pp2 = ax25_from_text("W1ABC>TEST,WB2OSZ-9*,WIDE2-1:hello", true)
	require.NotNil(t, pp2)
	assert.True(t, d.dedupe_check(pp2, 0))

	/* But a different channel is not. */
	assert.False(t, d.dedupe_check(pp, 1))
}

func Test_dedupe_expires_after_window(t *testing.T) {
	var d = dedupe_init(30 * time.Second)

	var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	var pp = ax25_from_text("W1ABC>TEST:hello", true)
	require.NotNil(t, pp)

	d.dedupe_remember(pp, 0)

	now = now.Add(29 * time.Second)
	assert.True(t, d.dedupe_check(pp, 0))

	now = now.Add(2 * time.Second)
	assert.False(t, d.dedupe_check(pp, 0))
}

func Test_dedupe_oldest_overwritten_when_full(t *testing.T) {
	var d = dedupe_init(30 * time.Second)

	var first = ax25_from_text("W1AAA>TEST:number 0", true)
	require.NotNil(t, first)
	d.dedupe_remember(first, 0)

	for i := 1; i < HISTORY_MAX+1; i++ {
		var pp = ax25_from_text("W1AAA>TEST:number "+string(rune('0'+i%10))+string(rune('a'+i%26)), true)
		require.NotNil(t, pp)
		d.dedupe_remember(pp, 0)
	}

	assert.False(t, d.dedupe_check(first, 0))
}
