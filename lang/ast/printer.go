package ast

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mna/zircon/lang/token"
)

// format implements the common fmt.Formatter body shared by every node: it
// prints label, optionally followed by "(k=v, ...)" pairs sorted by key for
// determinism, honoring width and the '-' (right-pad) flag. Other flags
// are ignored.
func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
		}
		label += " (" + strings.Join(parts, ", ") + ")"
	}

	if w, ok := f.Width(); ok {
		if f.Flag('-') {
			label = label + strings.Repeat(" ", max(0, w-len(label)))
		} else {
			label = strings.Repeat(" ", max(0, w-len(label))) + label
		}
	}
	io.WriteString(f, label)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Printer pretty-prints an AST as an indented tree, one node per line.
type Printer struct {
	Output  io.Writer
	Pos     token.PosMode
	NodeFmt string // defaults to "%v"
}

// Print walks n and writes its indented representation to p.Output. file is
// required unless p.Pos is token.PosNone.
func (p *Printer) Print(n Node, file *token.File) error {
	if file == nil && p.Pos != token.PosNone {
		return errors.New("file must be provided to print positions")
	}

	pp := &printer{w: p.Output, pos: p.Pos, nodeFmt: p.NodeFmt, file: file}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	pos     token.PosMode
	nodeFmt string
	file    *token.File
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s"
	args := []any{strings.Repeat(". ", indent)}
	if p.pos != token.PosNone {
		format += "[%s:%s] "
		start, end := n.Span()
		args = append(args,
			token.FormatPos(p.pos, p.file, start, true),
			token.FormatPos(p.pos, p.file, end, false),
		)
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
