package cgsmiles

import (
	"strconv"

	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
)

// parsedAtom is a heavy atom before hydrogens are added.
type parsedAtom struct {
	Element  string
	Aromatic bool
	Charge   int
	// HCount is the explicit hydrogen count from a bracket atom, or -1 when
	// hydrogens are derived from valence.
	HCount  int
	Bonding []bonding.Descriptor
}

type parsedBond struct {
	Src, Dst int
	Order    int
	Aromatic bool
}

// bondSymbol is a pending bond token.
type bondSymbol struct {
	set      bool
	order    int
	aromatic bool
	pos      int
}

type ringOpening struct {
	atom int
	bond bondSymbol
	pos  int
}

// fragmentParser turns one fragment SMILES string into a block graph.
type fragmentParser struct {
	name string
	src  string
	pos  int

	atoms []parsedAtom
	bonds []parsedBond

	prevAtom  int
	atomStack []int
	// branchMark records content() when each open branch started. Atoms and
	// descriptor runs both count as branch content.
	branchMark []int
	attached   int
	nextBond   bondSymbol
	rings      map[int]ringOpening
	// pending holds descriptors that precede the first atom of a component.
	pending    []bonding.Descriptor
	pendingPos int
}

// ParseFragment parses the SMILES-like definition of fragment name into a
// block graph. Heavy atoms are numbered in parse order starting at 0; implicit
// hydrogens follow, grouped per parent atom.
func ParseFragment(name, smiles string) (*molgraph.Graph, error) {
	p := &fragmentParser{
		name:     name,
		src:      smiles,
		prevAtom: -1,
		rings:    make(map[int]ringOpening),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.build()
}

func (p *fragmentParser) parse() error {
	if p.src == "" {
		return grammarError(p.name, 0, "empty fragment")
	}
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		var err error
		switch {
		case ch == '(':
			err = p.openBranch()
		case ch == ')':
			err = p.closeBranch()
		case ch == '-', ch == '/', ch == '\\':
			err = p.setBond(1, false)
		case ch == '=':
			err = p.setBond(2, false)
		case ch == '#':
			err = p.setBond(3, false)
		case ch == ':':
			err = p.setBond(1, true)
		case ch == '[':
			err = p.bracket()
		case ch == '%' || (ch >= '0' && ch <= '9'):
			err = p.ringClosure()
		case ch == '.':
			err = p.dot()
		case isOrganicStart(ch):
			err = p.organicAtom()
		default:
			err = grammarError(p.name, p.pos, "unexpected character %q", ch)
		}
		if err != nil {
			return err
		}
	}
	return p.finish()
}

func (p *fragmentParser) finish() error {
	if p.nextBond.set {
		return grammarError(p.name, p.nextBond.pos, "bond symbol without a following atom")
	}
	if len(p.atomStack) > 0 {
		return grammarError(p.name, len(p.src), "unbalanced parentheses")
	}
	for _, r := range p.rings {
		return grammarError(p.name, r.pos, "unterminated ring closure")
	}
	if len(p.pending) > 0 {
		return grammarError(p.name, p.pendingPos, "bonding descriptor without an atom")
	}
	if len(p.atoms) == 0 {
		return grammarError(p.name, 0, "fragment has no atoms")
	}
	return nil
}

func (p *fragmentParser) setBond(order int, aromatic bool) error {
	if p.nextBond.set {
		return grammarError(p.name, p.pos, "consecutive bond symbols")
	}
	if p.prevAtom < 0 {
		return grammarError(p.name, p.pos, "bond symbol without a preceding atom")
	}
	p.nextBond = bondSymbol{set: true, order: order, aromatic: aromatic, pos: p.pos}
	p.pos++
	return nil
}

func (p *fragmentParser) openBranch() error {
	if p.prevAtom < 0 {
		return grammarError(p.name, p.pos, "branch without a preceding atom")
	}
	if p.nextBond.set {
		return grammarError(p.name, p.pos, "bond symbol before branch")
	}
	p.atomStack = append(p.atomStack, p.prevAtom)
	p.branchMark = append(p.branchMark, p.content())
	p.pos++
	return nil
}

func (p *fragmentParser) closeBranch() error {
	if len(p.atomStack) == 0 {
		return grammarError(p.name, p.pos, "unbalanced parentheses")
	}
	if p.nextBond.set {
		return grammarError(p.name, p.nextBond.pos, "bond symbol without a following atom")
	}
	top := len(p.atomStack) - 1
	if p.branchMark[top] == p.content() {
		return grammarError(p.name, p.pos, "empty branch")
	}
	p.prevAtom = p.atomStack[top]
	p.atomStack = p.atomStack[:top]
	p.branchMark = p.branchMark[:top]
	p.pos++
	return nil
}

func (p *fragmentParser) content() int { return len(p.atoms) + p.attached }

func (p *fragmentParser) dot() error {
	if p.nextBond.set {
		return grammarError(p.name, p.nextBond.pos, "bond symbol without a following atom")
	}
	if len(p.atomStack) > 0 {
		return grammarError(p.name, p.pos, "component separator inside a branch")
	}
	p.prevAtom = -1
	p.pos++
	return nil
}

func (p *fragmentParser) ringClosure() error {
	start := p.pos
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return grammarError(p.name, start, "'%%' must be followed by two digits")
		}
		num, _ = strconv.Atoi(p.src[p.pos+1 : p.pos+3])
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}
	if p.prevAtom < 0 {
		return grammarError(p.name, start, "ring closure without a preceding atom")
	}
	bond := p.nextBond
	p.nextBond = bondSymbol{}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpening{atom: p.prevAtom, bond: bond, pos: start}
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prevAtom {
		return grammarError(p.name, start, "ring closure %d bonds an atom to itself", num)
	}
	if open.bond.set && bond.set && (open.bond.order != bond.order || open.bond.aromatic != bond.aromatic) {
		return grammarError(p.name, start, "conflicting bond symbols on ring closure %d", num)
	}
	if !bond.set {
		bond = open.bond
	}
	for _, b := range p.bonds {
		if (b.Src == open.atom && b.Dst == p.prevAtom) || (b.Src == p.prevAtom && b.Dst == open.atom) {
			return grammarError(p.name, start, "ring closure %d duplicates an existing bond", num)
		}
	}
	p.bonds = append(p.bonds, p.bondBetween(open.atom, p.prevAtom, bond))
	return nil
}

// bondBetween resolves the order of a bond from its symbol, defaulting to an
// aromatic bond between two aromatic atoms and a single bond otherwise.
func (p *fragmentParser) bondBetween(a, b int, sym bondSymbol) parsedBond {
	bond := parsedBond{Src: a, Dst: b, Order: 1}
	switch {
	case sym.set:
		bond.Order = sym.order
		bond.Aromatic = sym.aromatic
	case p.atoms[a].Aromatic && p.atoms[b].Aromatic:
		bond.Aromatic = true
	}
	return bond
}

// addAtom appends atom, bonds it to the previous atom and attaches any
// descriptors waiting for it.
func (p *fragmentParser) addAtom(atom parsedAtom) {
	idx := len(p.atoms)
	if len(p.pending) > 0 {
		atom.Bonding = append(p.pending, atom.Bonding...)
		p.pending = nil
	}
	p.atoms = append(p.atoms, atom)
	if p.prevAtom >= 0 {
		p.bonds = append(p.bonds, p.bondBetween(p.prevAtom, idx, p.nextBond))
	}
	p.nextBond = bondSymbol{}
	p.prevAtom = idx
}

func (p *fragmentParser) organicAtom() error {
	start := p.pos
	ch := p.src[p.pos]
	if ch == 'C' && p.pos+1 < len(p.src) && p.src[p.pos+1] == 'l' {
		p.pos += 2
		p.addAtom(parsedAtom{Element: "Cl", HCount: -1})
		return nil
	}
	if ch == 'B' && p.pos+1 < len(p.src) && p.src[p.pos+1] == 'r' {
		p.pos += 2
		p.addAtom(parsedAtom{Element: "Br", HCount: -1})
		return nil
	}
	p.pos++
	switch ch {
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.addAtom(parsedAtom{Element: string(ch - 'a' + 'A'), Aromatic: true, HCount: -1})
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I', 'H':
		p.addAtom(parsedAtom{Element: string(ch), HCount: -1})
	default:
		return grammarError(p.name, start, "unknown atom %q", ch)
	}
	return nil
}

// bracket handles `[...]`: either a bracket atom or a run of standalone
// bonding descriptors such as `[$]` or `[>1]`.
func (p *fragmentParser) bracket() error {
	start := p.pos
	end := start + 1
	for end < len(p.src) && p.src[end] != ']' {
		if p.src[end] == '[' {
			return grammarError(p.name, end, "unbalanced brackets")
		}
		end++
	}
	if end >= len(p.src) {
		return grammarError(p.name, start, "unbalanced brackets")
	}
	content := p.src[start+1 : end]
	p.pos = end + 1
	if content == "" {
		return grammarError(p.name, start, "empty bracket")
	}

	if bonding.IsMarker(content[0]) {
		descs, err := bonding.ScanAll(content)
		if err != nil {
			return grammarError(p.name, start+1, "invalid bonding descriptor: %v", err)
		}
		return p.attachDescriptors(descs, start)
	}

	atom, err := parseBracketAtom(content)
	if err != nil {
		return grammarError(p.name, start+1+err.offset, "%s", err.msg)
	}
	p.addAtom(atom)
	return nil
}

// attachDescriptors binds standalone descriptors to the current atom, or to
// the next atom when the current component has no atom yet. Inside a branch
// the current atom is the branch anchor until the branch has an atom of its
// own, so `C([$])C` puts the descriptor on the first carbon.
func (p *fragmentParser) attachDescriptors(descs []bonding.Descriptor, pos int) error {
	if p.nextBond.set {
		return grammarError(p.name, p.nextBond.pos, "bond symbol before bonding descriptor")
	}
	if p.prevAtom < 0 {
		if len(p.pending) == 0 {
			p.pendingPos = pos
		}
		p.pending = append(p.pending, descs...)
		return nil
	}
	a := &p.atoms[p.prevAtom]
	a.Bonding = append(a.Bonding, descs...)
	p.attached++
	return nil
}

// build materializes the block graph and adds implicit hydrogens.
func (p *fragmentParser) build() (*molgraph.Graph, error) {
	g := molgraph.New()
	for i, a := range p.atoms {
		if _, err := g.AddAtom(molgraph.Atom{
			ID:       i,
			Element:  a.Element,
			Aromatic: a.Aromatic,
			Charge:   a.Charge,
			Bonding:  a.Bonding,
		}); err != nil {
			return nil, err
		}
	}
	for _, b := range p.bonds {
		if err := g.AddBond(b.Src, b.Dst, b.Order, b.Aromatic); err != nil {
			return nil, err
		}
	}

	next := len(p.atoms)
	for i, a := range p.atoms {
		h := a.HCount
		if h < 0 {
			used := g.BondOrderSum(i) + len(a.Bonding)
			if a.Aromatic {
				used++
			}
			h = molgraph.ImplicitHydrogens(a.Element, a.Aromatic, a.Charge, used)
		}
		for k := 0; k < h; k++ {
			if _, err := g.AddAtom(molgraph.Atom{ID: next, Element: "H"}); err != nil {
				return nil, err
			}
			if err := g.AddBond(i, next, 1, false); err != nil {
				return nil, err
			}
			next++
		}
	}
	return g, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isOrganicStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
