// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mna/zircon/lang/token"
)

// Error and ErrorList mirror go/scanner's own Error/ErrorList (same Add/
// Sort/Err/String API), ported rather than aliased: go/scanner's API is
// hardcoded to go/token.Position, and zircon's token.Position (which
// additionally needs no column-only variant) is its own distinct type, so
// the stdlib type cannot be reused as-is.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return e.Pos.String() + ": " + e.Msg
}

// ErrorList is a list of *Error, sortable by position, implementing error
// via Err so it can be returned (or nil) from a parse/scan entry point.
type ErrorList []*Error

func (l *ErrorList) Add(pos token.Position, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

func (l ErrorList) Len() int      { return len(l) }
func (l ErrorList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ErrorList) Less(i, j int) bool {
	a, b := l[i].Pos, l[j].Pos
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

func (l ErrorList) Sort() { sort.Sort(l) }

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// Err returns l as an error, or nil if l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// PrintError writes each error in err, one per line, to w. If err is not an
// ErrorList, it is printed as a single line.
func PrintError(w io.Writer, err error) {
	if list, ok := err.(ErrorList); ok {
		for _, e := range list {
			fmt.Fprintf(w, "%s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "%s\n", err)
}

// TokenAndValue combines the token type with the decoded token value in the
// same struct, as produced by one call to Scan.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles tokenizes the source files and returns the list of tokens,
// grouped by the file at the same index, along with any error encountered.
// The error, if non-nil, is an ErrorList.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		fsf := fs.AddFile(file, -1, len(b))
		s.Init(fsf, b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{
				Token: tok,
				Value: tokVal,
			})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes a zircon source file for the parser to consume.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	sb          strings.Builder // writes to Builder never fail, so errors are ignored
	invalidByte byte            // when cur==RuneError due to failed utf8 decode, this is the invalid byte
	cur         rune            // current character
	off         int             // byte offset of cur
	roff        int             // byte offset just past cur
	line        int             // 1-based line of cur
	col         int             // 1-based column of cur
}

// Init initializes the scanner to tokenize a new file. It panics if the
// file's registered size does not match len(src).
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. Returns 0 at end of file.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// advance reads the next Unicode character into s.cur; s.cur < 0 means
// end-of-file.
func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}

	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	s.off = s.roff
	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.line, s.col+1, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) error(line, col int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(line, col)), msg)
	}
}

func (s *Scanner) errorf(line, col int, format string, args ...any) {
	s.error(line, col, fmt.Sprintf(format, args...))
}

// advanceIf advances and returns true if the current char matches any of the
// given bytes.
func (s *Scanner) advanceIf(matches ...byte) bool {
	for _, m := range matches {
		if s.cur == rune(m) {
			s.advance()
			return true
		}
	}
	return false
}

// Scan returns the next token in the source file, filling tokVal with its
// decoded value.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments(tokVal)

	startLine, startCol := s.line, s.col
	pos := s.file.Pos(startLine, startCol)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		if lit == "_" {
			tok = token.UNDERSCORE
		} else {
			tok = token.LookupIdent(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur):
		lit, base := s.number()
		tok = token.INT
		v, err := parseInt(lit, base)
		if err != nil {
			s.error(startLine, startCol, "invalid integer literal: "+err.Error())
		}
		*tokVal = token.Value{Raw: lit, Pos: pos, Int: v}

	default:
		s.advance() // always make progress
		switch cur {
		case '"':
			tok = token.STRING
			lit, val := s.shortString()
			*tokVal = token.Value{Raw: lit, Pos: pos, Str: val}

		case '(':
			tok = token.LPAREN
		case ')':
			tok = token.RPAREN
		case '[':
			tok = token.LBRACK
		case ']':
			tok = token.RBRACK
		case '{':
			tok = token.LBRACE
		case '}':
			tok = token.RBRACE
		case ',':
			tok = token.COMMA
		case ';':
			tok = token.SEMI
		case '~':
			tok = token.TILDE

		case '+':
			tok = token.PLUS
		case '*':
			tok = token.STAR
		case '%':
			tok = token.PERCENT
		case '^':
			tok = token.CARET

		case '&':
			tok = token.AMP
			if s.advanceIf('&') {
				tok = token.AMPAMP
			}
		case '|':
			tok = token.PIPE
			if s.advanceIf('|') {
				tok = token.PIPEPIPE
			}

		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.NEQ
			}

		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQEQ
			} else if s.advanceIf('>') {
				tok = token.FATARROW
			}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}

		case '-':
			tok = token.MINUS
			if s.advanceIf('>') {
				tok = token.ARROW
			}

		case '/':
			tok = token.SLASH

		case ':':
			tok = token.COLON
			if s.advanceIf(':') {
				tok = token.COLONCOLON
			}

		case '.':
			tok = token.DOT
			if s.advanceIf('.') {
				tok = token.DOTDOT
				if s.advanceIf('=') {
					tok = token.DOTDOTEQ
				}
			}

		case -1:
			tok = token.EOF

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(startLine, startCol, "illegal character %#U", cur)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
			return tok
		}
		if tokVal.Raw == "" {
			*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}
		}
	}
	return tok
}

// skipWhitespaceAndComments advances past whitespace and // and /* */
// comments. Comments carry no semantic meaning beyond position tracking
// (spec: comments are discarded after lexing), so they are never returned
// as tokens; tokVal is reset to its zero value before returning.
func (s *Scanner) skipWhitespaceAndComments(tokVal *token.Value) {
	*tokVal = token.Value{}
	for {
		for isWhitespace(s.cur) {
			s.advance()
		}
		if s.cur == '/' && s.peek() == '/' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		if s.cur == '/' && s.peek() == '*' {
			startLine, startCol := s.line, s.col
			s.advance()
			s.advance()
			closed := false
			for s.cur != -1 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(startLine, startCol, "block comment not terminated")
			}
			continue
		}
		return
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return isDecimal(rn) || rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}

func parseInt(lit string, base int) (*big.Int, error) {
	clean := strings.ReplaceAll(lit, "_", "")
	if base != 10 {
		clean = clean[2:]
	}
	v, ok := new(big.Int).SetString(clean, base)
	if !ok {
		return nil, strconv.ErrSyntax
	}
	return v, nil
}
