package maincmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/zircon/internal/witness"
	"github.com/mna/zircon/lang/machine/scalar"
)

// Run compiles files and executes the resulting program on the scalar
// virtual machine (spec §4.6/§9): input is read as a template JSON document
// from c.Input matching the program's declared input structure,
// and the output is printed as template JSON.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog, err := compileProgram(ctx, stdio, c.limits, args...)
	if err != nil {
		return err
	}

	raw, err := readAll(stdio, c.Input)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "reading input: %s\n", err)
		return err
	}

	input, err := witness.Decode(prog.InputType, json.RawMessage(raw))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	out, err := scalar.New(prog).Run(input)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	doc, err := witness.Encode(prog.OutputType, out)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	fmt.Fprintln(stdio.Stdout, string(doc))
	return nil
}
