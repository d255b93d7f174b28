package token

import "testing"

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(12, 34)
	line, col := p.LineCol()
	if line != 12 || col != 34 {
		t.Fatalf("LineCol() = (%d, %d), want (12, 34)", line, col)
	}
}

func TestPosUnknown(t *testing.T) {
	if !MakePos(0, 5).Unknown() {
		t.Error("Unknown() = false for zero line, want true")
	}
	if !MakePos(5, 0).Unknown() {
		t.Error("Unknown() = false for zero column, want true")
	}
	if MakePos(1, 1).Unknown() {
		t.Error("Unknown() = true for (1,1), want false")
	}
}

func TestPosIsValid(t *testing.T) {
	if MakePos(0, 0).IsValid() {
		t.Error("IsValid() = true for (0,0), want false")
	}
	if !MakePos(3, 4).IsValid() {
		t.Error("IsValid() = false for (3,4), want true")
	}
}

func TestPositionString(t *testing.T) {
	cases := []struct {
		pos  Position
		want string
	}{
		{Position{Filename: "a.zr", Line: 3, Column: 7}, "a.zr:3:7"},
		{Position{Line: 3, Column: 7}, "3:7"},
		{Position{Filename: "a.zr"}, "a.zr"},
		{Position{}, "-"},
	}
	for _, c := range cases {
		if got := c.pos.String(); got != c.want {
			t.Errorf("Position(%+v).String() = %q, want %q", c.pos, got, c.want)
		}
	}
}

func TestFileSetAddAndLookup(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("main.zr", -1, 42)
	if f.Name() != "main.zr" {
		t.Errorf("Name() = %q, want %q", f.Name(), "main.zr")
	}
	if f.Size() != 42 {
		t.Errorf("Size() = %d, want 42", f.Size())
	}
	if got := fset.File("main.zr"); got != f {
		t.Error("FileSet.File did not return the same *File")
	}
	if got := fset.File("missing.zr"); got != nil {
		t.Errorf("FileSet.File(missing) = %v, want nil", got)
	}
}

func TestFilePosition(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("lib.zr", -1, 10)
	p := f.Pos(2, 9)
	got := f.Position(p)
	want := Position{Filename: "lib.zr", Line: 2, Column: 9}
	if got != want {
		t.Errorf("Position() = %+v, want %+v", got, want)
	}
}

func TestFormatPos(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("lib.zr", -1, 10)
	p := f.Pos(2, 9)

	if got := FormatPos(PosNone, f, p, true); got != "" {
		t.Errorf("FormatPos(PosNone) = %q, want empty", got)
	}
	if got := FormatPos(PosShort, f, p, true); got != "2:9" {
		t.Errorf("FormatPos(PosShort) = %q, want %q", got, "2:9")
	}
	if got := FormatPos(PosLong, f, p, true); got != "lib.zr:2:9" {
		t.Errorf("FormatPos(PosLong) = %q, want %q", got, "lib.zr:2:9")
	}
	if got := FormatPos(PosLong, f, p, false); got != "2:9" {
		t.Errorf("FormatPos(PosLong, withName=false) = %q, want %q", got, "2:9")
	}
}
