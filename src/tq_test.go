package malamute

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tq_fixture() *tq_s {
	var pa = audio_config_defaults()
	pa.chan_medium[0] = MEDIUM_RADIO
	pa.chan_medium[1] = MEDIUM_RADIO
	return tq_init(pa)
}

func Test_tq_fifo_within_priority(t *testing.T) {
	var tq = tq_fixture()

	for _, text := range []string{"A>B:1", "A>B:2", "A>B:3"} {
		tq.tq_append(0, TQ_PRIO_1_LO, ax25_from_text(text, true))
	}

	assert.Equal(t, "1", string(tq.tq_remove(0, TQ_PRIO_1_LO).ax25_get_info()))
	assert.Equal(t, "2", string(tq.tq_remove(0, TQ_PRIO_1_LO).ax25_get_info()))
	assert.Equal(t, "3", string(tq.tq_remove(0, TQ_PRIO_1_LO).ax25_get_info()))
	assert.Nil(t, tq.tq_remove(0, TQ_PRIO_1_LO))
}

func Test_tq_peek_does_not_remove(t *testing.T) {
	var tq = tq_fixture()

	tq.tq_append(0, TQ_PRIO_0_HI, ax25_from_text("A>B:x", true))

	require.NotNil(t, tq.tq_peek(0, TQ_PRIO_0_HI))
	require.NotNil(t, tq.tq_peek(0, TQ_PRIO_0_HI))
	require.NotNil(t, tq.tq_remove(0, TQ_PRIO_0_HI))
	assert.Nil(t, tq.tq_peek(0, TQ_PRIO_0_HI))
}

func Test_tq_channels_are_independent(t *testing.T) {
	var tq = tq_fixture()

	tq.tq_append(0, TQ_PRIO_1_LO, ax25_from_text("A>B:zero", true))
	tq.tq_append(1, TQ_PRIO_1_LO, ax25_from_text("A>B:one", true))

	assert.False(t, tq.tq_is_empty(0))
	assert.False(t, tq.tq_is_empty(1))
	assert.Equal(t, "one", string(tq.tq_remove(1, TQ_PRIO_1_LO).ax25_get_info()))
	assert.True(t, tq.tq_is_empty(1))
}

func Test_tq_wait_wakes_on_append(t *testing.T) {
	var tq = tq_fixture()

	var wg sync.WaitGroup
	wg.Add(1)
	var got *packet_t

	go func() {
		defer wg.Done()
		if tq.tq_wait_while_empty(0) {
			got = tq.tq_remove(0, TQ_PRIO_0_HI)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	tq.tq_append(0, TQ_PRIO_0_HI, ax25_from_text("A>B:wake", true))

	wg.Wait()
	require.NotNil(t, got)
	assert.Equal(t, "wake", string(got.ax25_get_info()))
}

func Test_tq_aprs_overflow_dropped(t *testing.T) {
	var tq = tq_fixture()

	for i := 0; i < tq_aprs_bound+10; i++ {
		tq.tq_append(0, TQ_PRIO_1_LO, ax25_from_text("A>B:flood", true))
	}

	assert.Equal(t, tq_aprs_bound+1, tq.tq_count(0, TQ_PRIO_1_LO))

	/* Non-APRS traffic is not bounded. */
	for i := 0; i < tq_aprs_bound+10; i++ {
		tq.tq_append(1, TQ_PRIO_1_LO,
			ax25_u_frame([]string{"W2UB", "N2GH"}, cr_cmd, frame_type_U_TEST, 0, 0, []byte("t")))
	}
	assert.Equal(t, tq_aprs_bound+10, tq.tq_count(1, TQ_PRIO_1_LO))
}

func Test_tq_reject_invalid_channel(t *testing.T) {
	var tq = tq_fixture()

	tq.tq_append(5, TQ_PRIO_1_LO, ax25_from_text("A>B:x", true)) /* not MEDIUM_RADIO */
	assert.Equal(t, 0, tq.tq_count(5, TQ_PRIO_1_LO))
}
