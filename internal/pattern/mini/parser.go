package mini

import (
	"strconv"
)

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) expect(k tokKind, what string) (token, error) {
	t := p.next()
	if t.kind != k {
		return t, &ParseError{Msg: "expected " + what, Pos: t.pos}
	}
	return t, nil
}

// parseProgram parses an entire mini-notation string: a top-level sequence,
// optionally comma-separated into stacked layers.
func parseProgram(src string) (*node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseStackOrSeq(tEOF)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tEOF {
		return nil, &ParseError{Msg: "trailing input", Pos: p.peek().pos}
	}
	return n, nil
}

// parseStackOrSeq parses comma-separated sequences up to (but not consuming)
// a token of kind stop.
func (p *parser) parseStackOrSeq(stop tokKind) (*node, error) {
	first, err := p.parseSequence(stop)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tComma {
		return first, nil
	}
	layers := []*node{first}
	for p.peek().kind == tComma {
		p.next()
		layer, err := p.parseSequence(stop)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return &node{kind: kStack, children: layers}, nil
}

func isSeqStop(k tokKind, stop tokKind) bool {
	if k == stop || k == tEOF {
		return true
	}
	switch k {
	case tRBrack, tRAngle, tComma, tRParen:
		return true
	}
	return false
}

func (p *parser) parseSequence(stop tokKind) (*node, error) {
	var items []*node
	for !isSeqStop(p.peek().kind, stop) {
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &node{kind: kSeq, children: items}, nil
}

// parseTerm parses one sequence element plus any trailing modifiers:
// replication (!), sample index (:n), speed (*f or /f), and euclid (k,n[,rot]).
func (p *parser) parseTerm() (*node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tColon:
			p.next()
			numTok, err := p.expect(tNumber, "sample index after ':'")
			if err != nil {
				return nil, err
			}
			if atom.kind != kWord {
				return nil, &ParseError{Msg: "':' index only applies to a word", Pos: numTok.pos}
			}
			idx, _ := strconv.Atoi(numTok.text)
			atom.index = &idx
		case tStar:
			p.next()
			factor, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			atom = &node{kind: kFast, children: []*node{atom, factor}}
		case tSlash:
			p.next()
			factor, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			atom = &node{kind: kSlow, children: []*node{atom, factor}}
		case tBang:
			p.next()
			count := 2
			if p.peek().kind == tNumber {
				n, _ := strconv.Atoi(p.next().text)
				count = n
			}
			rep := make([]*node, count)
			for i := range rep {
				rep[i] = atom
			}
			return &node{kind: kSeq, children: rep}, nil
		case tAt:
			// Weight is accepted syntactically; equal-width slots are used
			// for everything, so the weight value itself is discarded.
			p.next()
			if _, err := p.expect(tNumber, "weight after '@'"); err != nil {
				return nil, err
			}
		case tLParen:
			p.next()
			k, err := p.parseSequence(tComma)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tComma, "',' in euclid arguments"); err != nil {
				return nil, err
			}
			n, err := p.parseSequence(tComma)
			if err != nil {
				return nil, err
			}
			euclidChildren := []*node{atom, k, n}
			if p.peek().kind == tComma {
				p.next()
				rot, err := p.parseStackOrSeq(tRParen)
				if err != nil {
					return nil, err
				}
				euclidChildren = append(euclidChildren, rot)
			}
			if _, err := p.expect(tRParen, "')' closing euclid arguments"); err != nil {
				return nil, err
			}
			atom = &node{kind: kEuclid, children: euclidChildren}
		default:
			return atom, nil
		}
	}
}

func (p *parser) parseAtom() (*node, error) {
	t := p.peek()
	switch t.kind {
	case tWord:
		p.next()
		return &node{kind: kWord, word: t.text}, nil
	case tNumber:
		p.next()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &ParseError{Msg: "invalid number " + t.text, Pos: t.pos}
		}
		return &node{kind: kNumber, num: v}, nil
	case tRest:
		p.next()
		return &node{kind: kRest}, nil
	case tLBrack:
		p.next()
		inner, err := p.parseStackOrSeq(tRBrack)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRBrack, "']'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tLAngle:
		p.next()
		var items []*node
		for p.peek().kind != tRAngle && p.peek().kind != tEOF {
			item, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := p.expect(tRAngle, "'>'"); err != nil {
			return nil, err
		}
		return &node{kind: kAlt, children: items}, nil
	default:
		return nil, &ParseError{Msg: "unexpected token " + t.text, Pos: t.pos}
	}
}
