package dict

import "sort"

type editOp int

const (
	opReplace editOp = iota
	opInsert
	opDelete
)

type edit struct {
	op   editOp
	idx  int
	seq  int
	line string
}

// Patch collects line edits against an immutable snapshot of a file and
// applies them in one pass. Indices always refer to the original line
// numbering, so callers never have to offset-adjust as earlier edits
// accumulate. The edited buffer is only produced by Apply, which makes
// write-backs all-or-nothing.
type Patch struct {
	lines []string
	edits []edit
	seq   int
}

// NewPatch snapshots the given lines. The slice is not copied; callers must
// not mutate it afterwards.
func NewPatch(lines []string) *Patch {
	return &Patch{lines: lines}
}

// Replace substitutes the line at idx.
func (p *Patch) Replace(idx int, line string) {
	p.edits = append(p.edits, edit{op: opReplace, idx: idx, seq: p.seq, line: line})
	p.seq++
}

// Insert places a new line immediately before the original line at idx.
// idx == len(lines) appends at the end. Multiple inserts at the same index
// keep their call order.
func (p *Patch) Insert(idx int, line string) {
	p.edits = append(p.edits, edit{op: opInsert, idx: idx, seq: p.seq, line: line})
	p.seq++
}

// Delete drops the line at idx.
func (p *Patch) Delete(idx int) {
	p.edits = append(p.edits, edit{op: opDelete, idx: idx, seq: p.seq})
	p.seq++
}

// Dirty reports whether any edits have been recorded.
func (p *Patch) Dirty() bool {
	return len(p.edits) > 0
}

// Apply produces the edited line buffer. Untouched lines pass through
// unchanged.
func (p *Patch) Apply() []string {
	inserts := make(map[int][]edit)
	replaces := make(map[int]string)
	deletes := make(map[int]bool)
	for _, e := range p.edits {
		switch e.op {
		case opInsert:
			inserts[e.idx] = append(inserts[e.idx], e)
		case opReplace:
			replaces[e.idx] = e.line
		case opDelete:
			deletes[e.idx] = true
		}
	}
	for idx := range inserts {
		sort.Slice(inserts[idx], func(i, j int) bool {
			return inserts[idx][i].seq < inserts[idx][j].seq
		})
	}
	out := make([]string, 0, len(p.lines)+len(p.edits))
	for i := 0; i <= len(p.lines); i++ {
		for _, e := range inserts[i] {
			out = append(out, e.line)
		}
		if i == len(p.lines) {
			break
		}
		if deletes[i] {
			continue
		}
		if line, ok := replaces[i]; ok {
			out = append(out, line)
			continue
		}
		out = append(out, p.lines[i])
	}
	return out
}
