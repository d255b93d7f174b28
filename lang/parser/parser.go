// Package parser implements the parser that transforms zircon source code
// into an abstract syntax tree (AST).
package parser

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/scanner"
	"github.com/mna/zircon/lang/token"
)

// ParseFiles is a helper function that parses the source files and returns
// the fileset along with the ASTs and any error encountered. The error, if
// non-nil, is guaranteed to be a scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser
	res := make([]*ast.Chunk, 0, len(files))
	fs := token.NewFileSet()

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		p.init(fs, file, b)
		ch := p.parseChunk()
		ch.Name = file
		res = append(res, ch)
	}
	p.errors.Sort()
	return fs, res, p.errors.Err()
}

// ParseChunk is a helper function that parses a single chunk from a slice of
// bytes and returns the AST and any error encountered. The chunk is added to
// fset for position reporting under filename. The error, if non-nil, is
// guaranteed to be a scanner.ErrorList.
func ParseChunk(ctx context.Context, fset *token.FileSet, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(fset, filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	return ch, p.errors.Err()
}

// parser parses a zircon source file and produces an AST.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	tok token.Token
	val token.Value

	// noStructLit suppresses struct-literal parsing of a trailing `Name {`
	// while parsing the condition of if/while/for or a match scrutinee.
	noStructLit bool
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{}
	defer p.recoverChunk(ch)

	for p.tok != token.EOF {
		ch.Items = append(ch.Items, p.parseItem())
	}
	ch.EOF = p.val.Pos
	return ch
}

func (p *parser) recoverChunk(ch *ast.Chunk) {
	if r := recover(); r != nil {
		if r != errPanicMode {
			panic(r)
		}
		p.syncToItem()
	}
}

// syncToItem discards tokens until a plausible item-starting keyword or EOF,
// allowing parsing to continue after a syntax error instead of aborting the
// whole file.
func (p *parser) syncToItem() {
	for p.tok != token.EOF {
		switch p.tok {
		case token.FN, token.CONST, token.STATIC, token.STRUCT, token.ENUM,
			token.TYPE, token.IMPL, token.MOD, token.USE:
			return
		}
		p.advance()
	}
}

var errPanicMode = errors.New("panic")

// expect reports an error and panics with errPanicMode (recovered at the
// item/statement level) unless the current token is one of toks; otherwise
// it consumes the token and returns its position.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, toks)
	panic(errPanicMode)
}

// accept consumes and returns true if the current token is tok.
func (p *parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.advance()
		return true
	}
	return false
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, toks []token.Token) {
	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}
	lbl := buf.String()
	if len(toks) > 1 {
		lbl = "one of " + lbl
	}

	msg := "expected " + lbl
	if pos == p.val.Pos {
		found := p.val.Raw
		if found == "" {
			found = p.tok.GoString()
		}
		msg += ", found " + found
	}
	p.error(pos, msg)
}
