package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Packet filtering using an expression parsed from a
 *		configuration string, used to decide whether the
 *		digipeater should forward a packet.
 *
 * Description:	Supports the boolean operators & | ! and parentheses
 *		around these primitives:
 *
 *			b/call1/call2...	source ("budlist")
 *			d/call1/call2...	was digipeated by
 *			v/call1/call2...	via, still unused
 *			t/poimqstw		APRS data type
 *
 *		Names in the lists may end with "*" for a prefix match.
 *		Everything is case sensitive like the rest of AX.25.
 *
 *		Expressions are compiled once at configuration time;
 *		an unknown primitive is a configuration error.
 *
 *------------------------------------------------------------------*/

import (
	"strings"

	"github.com/pkg/errors"
)

type pfilter_t struct {
	text string
	root pfilter_node
}

type pfilter_node interface {
	eval(pp *packet_t) bool
}

type pf_and struct{ a, b pfilter_node }
type pf_or struct{ a, b pfilter_node }
type pf_not struct{ a pfilter_node }

func (n pf_and) eval(pp *packet_t) bool { return n.a.eval(pp) && n.b.eval(pp) }
func (n pf_or) eval(pp *packet_t) bool  { return n.a.eval(pp) || n.b.eval(pp) }
func (n pf_not) eval(pp *packet_t) bool { return !n.a.eval(pp) }

/* b/ - source call matches the list. */

type pf_budlist struct{ list []string }

func (n pf_budlist) eval(pp *packet_t) bool {
	return list_match(n.list, pp.ax25_get_addr_with_ssid(AX25_SOURCE))
}

/* d/ - heard via one of these digipeaters (H bit set). */

type pf_digipeated struct{ list []string }

func (n pf_digipeated) eval(pp *packet_t) bool {
	for i := AX25_REPEATER_1; i < pp.ax25_get_num_addr(); i++ {
		if pp.ax25_get_h(i) && list_match(n.list, pp.ax25_get_addr_with_ssid(i)) {
			return true
		}
	}
	return false
}

/* v/ - one of these is in the path but not yet used. */

type pf_via_unused struct{ list []string }

func (n pf_via_unused) eval(pp *packet_t) bool {
	for i := AX25_REPEATER_1; i < pp.ax25_get_num_addr(); i++ {
		if !pp.ax25_get_h(i) && list_match(n.list, pp.ax25_get_addr_with_ssid(i)) {
			return true
		}
	}
	return false
}

/* t/ - APRS data type indicator. */

type pf_type struct{ types string }

func (n pf_type) eval(pp *packet_t) bool {
	if !pp.ax25_is_aprs() {
		return false
	}
	var dti = pp.ax25_get_dti()
	for _, t := range n.types {
		var match bool
		switch t {
		case 'p': /* Position, with or without timestamp. */
			match = dti == '!' || dti == '=' || dti == '/' || dti == '@' ||
				dti == 0x1c || dti == 0x1d || dti == '\'' || dti == '`'
		case 'o': /* Object. */
			match = dti == ';'
		case 'i': /* Item. */
			match = dti == ')'
		case 'm': /* Message. */
			match = dti == ':'
		case 'q': /* Query. */
			match = dti == '?'
		case 's': /* Status. */
			match = dti == '>'
		case 't': /* Telemetry. */
			match = dti == 'T'
		case 'w': /* Weather. */
			match = dti == '_' || dti == '*'
		}
		if match {
			return true
		}
	}
	return false
}

func list_match(list []string, addr string) bool {
	for _, pattern := range list {
		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(addr, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		} else if addr == pattern {
			return true
		}
	}
	return false
}

/*------------------------------------------------------------------
 *
 * Name:	pfilter_compile
 *
 * Purpose:	Parse a filter expression into a tree.  Precedence,
 *		highest to lowest:  !  &  |
 *
 *------------------------------------------------------------------*/

func pfilter_compile(text string) (*pfilter_t, error) {
	var p = &pfilter_parser{tokens: pfilter_tokenize(text)}
	var root, err = p.parse_or()
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", text)
	}
	if p.pos != len(p.tokens) {
		return nil, errors.Errorf("filter %q: unexpected %q", text, p.tokens[p.pos])
	}
	return &pfilter_t{text: text, root: root}, nil
}

func (pf *pfilter_t) pfilter_eval(pp *packet_t) bool {
	return pf.root.eval(pp)
}

func pfilter_tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, c := range text {
		switch c {
		case '&', '|', '!', '(', ')':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			tokens = append(tokens, string(c))
		case ' ', '\t':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(c)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

type pfilter_parser struct {
	tokens []string
	pos    int
}

func (p *pfilter_parser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *pfilter_parser) parse_or() (pfilter_node, error) {
	var left, err = p.parse_and()
	if err != nil {
		return nil, err
	}
	for p.peek() == "|" {
		p.pos++
		var right, rerr = p.parse_and()
		if rerr != nil {
			return nil, rerr
		}
		left = pf_or{left, right}
	}
	return left, nil
}

func (p *pfilter_parser) parse_and() (pfilter_node, error) {
	var left, err = p.parse_unary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "&" {
		p.pos++
		var right, rerr = p.parse_unary()
		if rerr != nil {
			return nil, rerr
		}
		left = pf_and{left, right}
	}
	return left, nil
}

func (p *pfilter_parser) parse_unary() (pfilter_node, error) {
	switch p.peek() {
	case "!":
		p.pos++
		var a, err = p.parse_unary()
		if err != nil {
			return nil, err
		}
		return pf_not{a}, nil
	case "(":
		p.pos++
		var a, err = p.parse_or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, errors.New("missing closing parenthesis")
		}
		p.pos++
		return a, nil
	case "":
		return nil, errors.New("unexpected end of expression")
	}
	return p.parse_primitive()
}

func (p *pfilter_parser) parse_primitive() (pfilter_node, error) {
	var tok = p.tokens[p.pos]
	p.pos++

	if len(tok) < 2 || tok[1] != '/' {
		return nil, errors.Errorf("unrecognized primitive %q", tok)
	}

	var args = strings.Split(tok[2:], "/")

	switch tok[0] {
	case 'b':
		return pf_budlist{args}, nil
	case 'd':
		return pf_digipeated{args}, nil
	case 'v':
		return pf_via_unused{args}, nil
	case 't':
		return pf_type{tok[2:]}, nil
	}
	return nil, errors.Errorf("unrecognized primitive %q", tok)
}
