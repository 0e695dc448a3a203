package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Read the configuration file and turn it into the
 *		explicit per-device and per-channel context values used
 *		by the rest of the system.
 *
 * Description:	YAML, one document, e.g.:
 *
 *		    adevs:
 *		      - samples_per_sec: 44100
 *		        bits_per_sample: 16
 *		        num_channels: 1
 *		    channels:
 *		      - mycall: WB2OSZ-9
 *		        baud: 1200
 *		        modem: afsk
 *		        profiles: A+
 *		        fix_bits: 1
 *		    digipeat:
 *		      dedupe_seconds: 30
 *		      rules:
 *		        - from: 0
 *		          to: 0
 *		          alias: "^WIDE[4-7]-[1-7]$|^CITYD$"
 *		          wide: "^WIDE[1-7]-[1-7]$|^TRACE[1-7]-[1-7]$"
 *		          preempt: "off"
 *
 *------------------------------------------------------------------*/

import (
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type config_file_s struct {
	Adevs []struct {
		SamplesPerSec int `yaml:"samples_per_sec"`
		BitsPerSample int `yaml:"bits_per_sample"`
		NumChannels   int `yaml:"num_channels"`
	} `yaml:"adevs"`

	Channels []struct {
		Mycall   string `yaml:"mycall"`
		Baud     int    `yaml:"baud"`
		Modem    string `yaml:"modem"`
		Mark     int    `yaml:"mark_freq"`
		Space    int    `yaml:"space_freq"`
		Profiles string `yaml:"profiles"`
		FixBits  int    `yaml:"fix_bits"`
		Passall  bool   `yaml:"passall"`
		Dwait    int    `yaml:"dwait"`
		Slottime int    `yaml:"slottime"`
		Persist  int    `yaml:"persist"`
		Txdelay  int    `yaml:"txdelay"`
		Txtail   int    `yaml:"txtail"`
		Fulldup  bool   `yaml:"fulldup"`
	} `yaml:"channels"`

	Digipeat struct {
		DedupeSeconds int `yaml:"dedupe_seconds"`
		Rules         []struct {
			From    int    `yaml:"from"`
			To      int    `yaml:"to"`
			Alias   string `yaml:"alias"`
			Wide    string `yaml:"wide"`
			Preempt string `yaml:"preempt"`
			Filter  string `yaml:"filter"`
		} `yaml:"rules"`
	} `yaml:"digipeat"`

	LogFile         string `yaml:"log_file"`
	TimestampFormat string `yaml:"timestamp_format"`
}

/*------------------------------------------------------------------
 *
 * Name:	config_read
 *
 * Purpose:	Parse the configuration file into audio and digipeater
 *		configuration values.
 *
 *------------------------------------------------------------------*/

func config_read(fname string) (*audio_s, *digi_config_s, string, error) {

	var raw, err = os.ReadFile(fname)
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "open configuration file")
	}

	var cf config_file_s
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, nil, "", errors.Wrap(err, "parse configuration file")
	}

	var pa = audio_config_defaults()

	if len(cf.Adevs) > MAX_ADEVS {
		return nil, nil, "", errors.Errorf("too many audio devices, maximum is %d", MAX_ADEVS)
	}
	for i, ad := range cf.Adevs {
		if ad.SamplesPerSec != 0 {
			pa.adev[i].samples_per_sec = ad.SamplesPerSec
		}
		if ad.BitsPerSample != 0 {
			pa.adev[i].bits_per_sample = ad.BitsPerSample
		}
		if ad.NumChannels != 0 {
			pa.adev[i].num_channels = ad.NumChannels
		}
		pa.adev[i].defined = true
	}

	if len(cf.Channels) > MAX_RADIO_CHANS {
		return nil, nil, "", errors.Errorf("too many channels, maximum is %d", MAX_RADIO_CHANS)
	}
	for i, ch := range cf.Channels {
		var ac = &pa.achan[i]
		pa.chan_medium[i] = MEDIUM_RADIO

		if ch.Mycall == "" {
			return nil, nil, "", errors.Errorf("channel %d: mycall is required", i)
		}
		if _, _, _, ok := ax25_parse_addr(-1, ch.Mycall, true); !ok {
			return nil, nil, "", errors.Errorf("channel %d: invalid mycall %q", i, ch.Mycall)
		}
		ac.mycall = ch.Mycall

		if ch.Baud != 0 {
			ac.baud = ch.Baud
		}

		switch ch.Modem {
		case "", "afsk":
			ac.modem_type = MODEM_AFSK
		case "baseband":
			ac.modem_type = MODEM_BASEBAND
		case "scramble", "g3ruh":
			ac.modem_type = MODEM_SCRAMBLE
		default:
			return nil, nil, "", errors.Errorf("channel %d: unknown modem type %q", i, ch.Modem)
		}

		/* Pick default tones for the data rate the same way the */
		/* command line harnesses do. */
		switch {
		case ac.modem_type != MODEM_AFSK:
			ac.mark_freq = 0
			ac.space_freq = 0
		case ac.baud < 600:
			ac.mark_freq = 1600
			ac.space_freq = 1800
		default:
			ac.mark_freq = DEFAULT_MARK_FREQ
			ac.space_freq = DEFAULT_SPACE_FREQ
		}
		if ch.Mark != 0 {
			ac.mark_freq = ch.Mark
		}
		if ch.Space != 0 {
			ac.space_freq = ch.Space
		}

		if ch.Profiles != "" {
			ac.profiles = ch.Profiles
		}
		if ch.FixBits < int(RETRY_NONE) || ch.FixBits >= int(RETRY_MAX) {
			return nil, nil, "", errors.Errorf("channel %d: fix_bits out of range", i)
		}
		ac.fix_bits = retry_t(ch.FixBits)
		ac.passall = ch.Passall

		if ch.Dwait != 0 {
			ac.dwait = ch.Dwait
		}
		if ch.Slottime != 0 {
			ac.slottime = ch.Slottime
		}
		if ch.Persist != 0 {
			ac.persist = ch.Persist
		}
		if ch.Txdelay != 0 {
			ac.txdelay = ch.Txdelay
		}
		if ch.Txtail != 0 {
			ac.txtail = ch.Txtail
		}
		ac.fulldup = ch.Fulldup
	}

	pa.timestamp_format = cf.TimestampFormat

	/*
	 * Digipeater rules.  Patterns are compiled once, here, and the
	 * compiled form is kept in the rule table.
	 */
	var dc = &digi_config_s{
		dedupe_time: 30 * time.Second,
	}
	if cf.Digipeat.DedupeSeconds != 0 {
		dc.dedupe_time = time.Duration(cf.Digipeat.DedupeSeconds) * time.Second
	}

	for _, r := range cf.Digipeat.Rules {
		if r.From < 0 || r.From >= MAX_RADIO_CHANS || r.To < 0 || r.To >= MAX_RADIO_CHANS {
			return nil, nil, "", errors.Errorf("digipeat rule: channel out of range (%d to %d)", r.From, r.To)
		}
		var rule = &dc.rule[r.From][r.To]
		rule.enabled = true

		var err error
		if r.Alias != "" {
			rule.alias, err = regexp.Compile(r.Alias)
			if err != nil {
				return nil, nil, "", errors.Wrapf(err, "digipeat rule %d to %d: alias", r.From, r.To)
			}
		}
		if r.Wide != "" {
			rule.wide, err = regexp.Compile(r.Wide)
			if err != nil {
				return nil, nil, "", errors.Wrapf(err, "digipeat rule %d to %d: wide", r.From, r.To)
			}
		}

		switch r.Preempt {
		case "", "off":
			rule.preempt = PREEMPT_OFF
		case "drop":
			rule.preempt = PREEMPT_DROP
		case "mark":
			rule.preempt = PREEMPT_MARK
		case "trace":
			rule.preempt = PREEMPT_TRACE
		default:
			return nil, nil, "", errors.Errorf("digipeat rule %d to %d: unknown preempt mode %q", r.From, r.To, r.Preempt)
		}

		if r.Filter != "" {
			rule.filter, err = pfilter_compile(r.Filter)
			if err != nil {
				return nil, nil, "", errors.Wrapf(err, "digipeat rule %d to %d", r.From, r.To)
			}
		}
	}

	return pa, dc, cf.LogFile, nil
}
