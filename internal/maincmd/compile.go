package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/parser"
	"github.com/mna/zircon/lang/scanner"
	"github.com/mna/zircon/lang/semantic"
)

// Compile parses, analyzes and lowers files to a wire-encoded bytecode
// program (spec §6.5/§9), writing it to c.Output or stdout.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog, err := compileProgram(ctx, stdio, c.limits, args...)
	if err != nil {
		return err
	}

	wire, err := bytecode.EncodeProgram(prog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "encoding program: %s\n", err)
		return err
	}

	out := stdio.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return err
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(wire); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	return nil
}

// compileProgram parses and analyzes files, printing any diagnostic
// (lexical, syntax or semantic) to stdio.Stderr before returning it.
func compileProgram(ctx context.Context, stdio mainer.Stdio, limits config.Limits, files ...string) (*bytecode.Program, error) {
	fs, chunks, perr := parser.ParseFiles(ctx, files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return nil, perr
	}

	prog, err := semantic.Analyze(fs, chunks, limits)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return nil, err
	}
	return prog, nil
}

// readAll reads path, or stdio.Stdin when path is empty.
func readAll(stdio mainer.Stdio, path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdio.Stdin)
	}
	return os.ReadFile(path)
}
