package scanner

import (
	"testing"

	"github.com/mna/zircon/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []string) {
	t.Helper()
	var s Scanner
	var errs []string
	fs := token.NewFileSet()
	f := fs.AddFile("test.zr", -1, len(src))
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})

	var toks []token.Token
	var tv token.Value
	for {
		tok := s.Scan(&tv)
		toks = append(toks, tok)
		if tok == token.EOF {
			break
		}
	}
	return toks, errs
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, errs := scanAll(t, "let mut x = foo_bar;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Token{token.LET, token.MUT, token.IDENT, token.EQ, token.IDENT, token.SEMI, token.EOF}
	assertTokens(t, toks, want)
}

func TestScanIntLiterals(t *testing.T) {
	var s Scanner
	fs := token.NewFileSet()
	src := "123 0x1a_2b 1_000"
	f := fs.AddFile("t.zr", -1, len(src))
	s.Init(f, []byte(src), func(pos token.Position, msg string) { t.Fatalf("unexpected error: %s", msg) })

	var tv token.Value
	tok := s.Scan(&tv)
	if tok != token.INT || tv.Int.String() != "123" {
		t.Fatalf("got %v %v, want INT 123", tok, tv.Int)
	}
	tok = s.Scan(&tv)
	if tok != token.INT || tv.Int.String() != "6699" {
		t.Fatalf("got %v %v, want INT 6699 (0x1a2b)", tok, tv.Int)
	}
	tok = s.Scan(&tv)
	if tok != token.INT || tv.Int.String() != "1000" {
		t.Fatalf("got %v %v, want INT 1000", tok, tv.Int)
	}
}

func TestScanOperators(t *testing.T) {
	toks, errs := scanAll(t, "a..b ..= -> => :: && || == != <= >=")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Token{
		token.IDENT, token.DOTDOT, token.IDENT,
		token.DOTDOTEQ, token.ARROW, token.FATARROW, token.COLONCOLON,
		token.AMPAMP, token.PIPEPIPE, token.EQEQ, token.NEQ, token.LE, token.GE,
		token.EOF,
	}
	assertTokens(t, toks, want)
}

func TestScanComments(t *testing.T) {
	toks, errs := scanAll(t, "let x = 1; // a comment\n/* block\ncomment */ let y = 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Token{
		token.LET, token.IDENT, token.EQ, token.INT, token.SEMI,
		token.LET, token.IDENT, token.EQ, token.INT, token.SEMI,
		token.EOF,
	}
	assertTokens(t, toks, want)
}

func TestScanString(t *testing.T) {
	var s Scanner
	fs := token.NewFileSet()
	src := `"hello\nworld"`
	f := fs.AddFile("s.zr", -1, len(src))
	s.Init(f, []byte(src), func(pos token.Position, msg string) { t.Fatalf("unexpected error: %s", msg) })

	var tv token.Value
	tok := s.Scan(&tv)
	if tok != token.STRING {
		t.Fatalf("got %v, want STRING", tok)
	}
	if tv.Str != "hello\nworld" {
		t.Fatalf("got %q, want %q", tv.Str, "hello\nworld")
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, errs := scanAll(t, `"oops`)
	if len(errs) == 0 {
		t.Fatal("expected an error for unterminated string")
	}
}

func TestScanIllegalCharacter(t *testing.T) {
	_, errs := scanAll(t, "let x = @;")
	if len(errs) == 0 {
		t.Fatal("expected an error for illegal character")
	}
}

func assertTokens(t *testing.T, got, want []token.Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
