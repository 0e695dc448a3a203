package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Control the output lines for push to talk (PTT) and
 *		other purposes such as data carrier detect.
 *
 * Description:	The sink is idempotent and PTT is forced off at
 *		shutdown.  A stuck PTT can tie up the transmitter so
 *		failures are logged and we carry on, best effort.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/warthog618/go-gpiocdev"
)

/* Output control types. */

type octype_t int

const (
	OCTYPE_PTT octype_t = iota
	OCTYPE_DCD
)

type ptt_sink interface {
	ptt_set(ot octype_t, channel int, on bool)
	ptt_term()
}

/*
 * No hardware attached.  Used by the test harnesses and for channels
 * without a PTT line, e.g. VOX operation.
 */

type ptt_none_s struct{}

func ptt_init_none() ptt_sink {
	return &ptt_none_s{}
}

func (p *ptt_none_s) ptt_set(ot octype_t, channel int, on bool) {}

func (p *ptt_none_s) ptt_term() {}

/*
 * PTT via a GPIO character device line, e.g. for a Raspberry Pi
 * driving a keying transistor.
 */

type ptt_gpio_s struct {
	line  [MAX_RADIO_CHANS][2]*gpiocdev.Line
	state [MAX_RADIO_CHANS][2]bool
}

type ptt_gpio_config_s struct {
	chip     string /* e.g. "gpiochip0" */
	line     int    /* Line offset on the chip. */
	invert   bool   /* Active low. */
	function octype_t
}

func ptt_init_gpio(configs map[int]ptt_gpio_config_s) (ptt_sink, error) {

	var p = &ptt_gpio_s{}

	for channel, cfg := range configs {
		if channel < 0 || channel >= MAX_RADIO_CHANS {
			continue
		}
		var opts = []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
		if cfg.invert {
			opts = append(opts, gpiocdev.AsActiveLow)
		}
		var line, err = gpiocdev.RequestLine(cfg.chip, cfg.line, opts...)
		if err != nil {
			return nil, err
		}
		p.line[channel][cfg.function] = line
	}
	return p, nil
}

func (p *ptt_gpio_s) ptt_set(ot octype_t, channel int, on bool) {

	if channel < 0 || channel >= MAX_RADIO_CHANS {
		return
	}

	if p.state[channel][ot] == on {
		return /* Idempotent. */
	}
	p.state[channel][ot] = on

	var line = p.line[channel][ot]
	if line == nil {
		return
	}

	var v = 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		/* May cause RF stuck-key; best effort. */
		dw_log.Error("Failed to set PTT/DCD line.", "chan", channel, "err", err)
	}
}

/* Shutdown: make sure the transmitter is off. */

func (p *ptt_gpio_s) ptt_term() {
	for channel := 0; channel < MAX_RADIO_CHANS; channel++ {
		p.ptt_set(OCTYPE_PTT, channel, false)
		p.ptt_set(OCTYPE_DCD, channel, false)
		for _, line := range p.line[channel] {
			if line != nil {
				line.Close()
			}
		}
	}
}
