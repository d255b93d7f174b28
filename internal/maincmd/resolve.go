package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/parser"
	"github.com/mna/zircon/lang/scanner"
	"github.com/mna/zircon/lang/semantic"
)

// Resolve runs the semantic phase (hoisting, type checking, bytecode
// lowering) over files and reports success, or every diagnostic collected
// along the way - there is no separate "resolved AST" to print in this
// pipeline, semantic.Analyze lowers straight to bytecode (spec §2: data
// flows strictly forward, source -> tokens -> AST -> typed IR + bytecode).
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(ctx, stdio, c.limits, args...)
}

func ResolveFiles(ctx context.Context, stdio mainer.Stdio, limits config.Limits, files ...string) error {
	fs, chunks, perr := parser.ParseFiles(ctx, files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	if _, err := semantic.Analyze(fs, chunks, limits); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	fmt.Fprintln(stdio.Stdout, "ok")
	return nil
}
