package cgsmiles

import (
	"strconv"
)

const (
	// DefaultMaxRepeat bounds `|N` repeat counts.
	DefaultMaxRepeat = 10000
	// DefaultMaxInstances bounds the placeholders of a meta block after
	// repeat expansion.
	DefaultMaxInstances = 100000
)

// MetaLimits bounds what a meta block may expand to. Zero fields select the
// defaults.
type MetaLimits struct {
	MaxRepeat    int
	MaxInstances int
}

// FragmentRef is one fragment instance placeholder of the meta block.
type FragmentRef struct {
	ID   int
	Name string
	// Pos is the offset of the reference inside the meta block.
	Pos int
}

// EdgeDecl is a declared connection between two placeholders.
type EdgeDecl struct {
	From, To int
}

// ReferenceGraph is the parsed meta block: placeholders in declaration order
// and the meta edges in the order they were declared.
type ReferenceGraph struct {
	Nodes []FragmentRef
	Edges []EdgeDecl
}

type metaRingOpening struct {
	node int
	pos  int
}

type metaParser struct {
	src          string
	pos          int
	maxRepeat    int
	maxInstances int

	graph *ReferenceGraph

	prevNode   int
	nodeStack  []int
	branchSize []int
	rings      map[int]metaRingOpening
	// lastRef is true while the previous token was a fragment reference, the
	// only place a repeat suffix may appear.
	lastRef bool
}

// ParseMeta parses the meta block (the content between the first pair of
// braces) into a reference graph.
func ParseMeta(meta string, limits MetaLimits) (*ReferenceGraph, error) {
	if limits.MaxRepeat <= 0 {
		limits.MaxRepeat = DefaultMaxRepeat
	}
	if limits.MaxInstances <= 0 {
		limits.MaxInstances = DefaultMaxInstances
	}
	p := &metaParser{
		src:          meta,
		maxRepeat:    limits.MaxRepeat,
		maxInstances: limits.MaxInstances,
		graph:        &ReferenceGraph{},
		prevNode:     -1,
		rings:        make(map[int]metaRingOpening),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.graph, nil
}

func (p *metaParser) parse() error {
	if p.src == "" {
		return grammarError(metaScope, 0, "empty meta block")
	}
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		wasRef := p.lastRef
		p.lastRef = false
		var err error
		switch {
		case ch == '[':
			err = p.reference()
		case ch == '|':
			if !wasRef {
				return grammarError(metaScope, p.pos, "repeat count must directly follow a fragment reference")
			}
			err = p.repeat()
		case ch == '(':
			err = p.openBranch()
		case ch == ')':
			err = p.closeBranch()
		case ch == '%' || isDigit(ch):
			err = p.ringClosure()
		case ch == '.':
			err = p.dot()
		default:
			err = grammarError(metaScope, p.pos, "unexpected character %q", ch)
		}
		if err != nil {
			return err
		}
	}
	if len(p.nodeStack) > 0 {
		return grammarError(metaScope, len(p.src), "unbalanced parentheses")
	}
	for _, r := range p.rings {
		return grammarError(metaScope, r.pos, "unterminated ring closure")
	}
	return nil
}

func (p *metaParser) addNode(name string, pos int) int {
	id := len(p.graph.Nodes)
	p.graph.Nodes = append(p.graph.Nodes, FragmentRef{ID: id, Name: name, Pos: pos})
	if p.prevNode >= 0 {
		p.graph.Edges = append(p.graph.Edges, EdgeDecl{From: p.prevNode, To: id})
	}
	p.prevNode = id
	return id
}

// reserve fails before the placeholder count would pass maxInstances.
func (p *metaParser) reserve(n, pos int) error {
	if len(p.graph.Nodes)+n > p.maxInstances {
		return limitError(metaScope, pos, "meta block expands to more than %d fragment instances", p.maxInstances)
	}
	return nil
}

func (p *metaParser) reference() error {
	start := p.pos
	if p.pos+1 >= len(p.src) || p.src[p.pos+1] != '#' {
		return grammarError(metaScope, start, "fragment reference must start with '[#'")
	}
	end := start + 2
	for end < len(p.src) && p.src[end] != ']' {
		end++
	}
	if end >= len(p.src) {
		return grammarError(metaScope, start, "unbalanced brackets")
	}
	name := p.src[start+2 : end]
	if err := checkFragmentName(name, start+2); err != nil {
		return err
	}
	if err := p.reserve(1, start); err != nil {
		return err
	}
	p.addNode(name, start)
	p.pos = end + 1
	p.lastRef = true
	return nil
}

// repeat expands `|N` into N-1 further chained copies of the previous node.
func (p *metaParser) repeat() error {
	start := p.pos
	p.pos++
	end := p.pos
	for end < len(p.src) && isDigit(p.src[end]) {
		end++
	}
	if end == p.pos {
		return grammarError(metaScope, start, "repeat count must be a positive integer")
	}
	n, err := strconv.Atoi(p.src[p.pos:end])
	if err != nil || n < 1 {
		return grammarError(metaScope, start, "repeat count must be a positive integer")
	}
	if n > p.maxRepeat {
		return grammarError(metaScope, start, "repeat count %d exceeds limit %d", n, p.maxRepeat)
	}
	if err := p.reserve(n-1, start); err != nil {
		return err
	}
	p.pos = end
	ref := p.graph.Nodes[p.prevNode]
	for i := 1; i < n; i++ {
		p.addNode(ref.Name, ref.Pos)
	}
	return nil
}

func (p *metaParser) openBranch() error {
	if p.prevNode < 0 {
		return grammarError(metaScope, p.pos, "branch without a preceding fragment")
	}
	p.nodeStack = append(p.nodeStack, p.prevNode)
	p.branchSize = append(p.branchSize, len(p.graph.Nodes))
	p.pos++
	return nil
}

func (p *metaParser) closeBranch() error {
	if len(p.nodeStack) == 0 {
		return grammarError(metaScope, p.pos, "unbalanced parentheses")
	}
	top := len(p.nodeStack) - 1
	if p.branchSize[top] == len(p.graph.Nodes) {
		return grammarError(metaScope, p.pos, "empty branch")
	}
	p.prevNode = p.nodeStack[top]
	p.nodeStack = p.nodeStack[:top]
	p.branchSize = p.branchSize[:top]
	p.pos++
	return nil
}

func (p *metaParser) ringClosure() error {
	start := p.pos
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return grammarError(metaScope, start, "'%%' must be followed by two digits")
		}
		num, _ = strconv.Atoi(p.src[p.pos+1 : p.pos+3])
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}
	if p.prevNode < 0 {
		return grammarError(metaScope, start, "ring closure without a preceding fragment")
	}
	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = metaRingOpening{node: p.prevNode, pos: start}
		return nil
	}
	delete(p.rings, num)
	if open.node == p.prevNode {
		return grammarError(metaScope, start, "ring closure %d links a fragment to itself", num)
	}
	p.graph.Edges = append(p.graph.Edges, EdgeDecl{From: open.node, To: p.prevNode})
	return nil
}

func (p *metaParser) dot() error {
	if len(p.nodeStack) > 0 {
		return grammarError(metaScope, p.pos, "component separator inside a branch")
	}
	p.prevNode = -1
	p.pos++
	return nil
}
