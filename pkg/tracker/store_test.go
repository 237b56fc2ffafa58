package tracker

import "testing"

func TestAddrFormula(t *testing.T) {
	got := Addr(2, 5, 3)
	want := 2*PatternSize + 5*(Channels*CellSize) + 3*CellSize
	if got != want {
		t.Fatalf("Addr(2,5,3) = %d, want %d", got, want)
	}
	if PatternSize != 1440 {
		t.Fatalf("PatternSize = %d, want 1440", PatternSize)
	}
}

func TestCellRoundTrip(t *testing.T) {
	s := NewStore()
	cell := PatternCell{Note: 60, Inst: 3, Vol: 40, Effect: 0x1234}
	s.WriteCell(1, 10, 4, cell)
	got := s.ReadCell(1, 10, 4)
	if got != cell {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, cell)
	}
}

func TestCellMarshalRoundTrip(t *testing.T) {
	cell := PatternCell{Note: 72, Inst: 200, Vol: 63, Effect: 0xBEEF}
	got := UnmarshalCell(cell.Marshal())
	if got != cell {
		t.Fatalf("marshal round trip mismatch: got %+v, want %+v", got, cell)
	}
}

func TestCopyPastePatternRoundTrip(t *testing.T) {
	s := NewStore()
	s.WriteCell(0, 0, 0, PatternCell{Note: 60, Vol: 63})
	s.WriteCell(0, 31, 8, PatternCell{Note: 72, Effect: 0xF000})

	buf := s.CopyPattern(0)

	// Clear the pattern, then restore it from the clipboard.
	for row := 0; row < Rows; row++ {
		for ch := 0; ch < Channels; ch++ {
			s.WriteCell(0, row, ch, PatternCell{})
		}
	}
	if c := s.ReadCell(0, 0, 0); !c.IsEmpty() {
		t.Fatalf("expected cleared cell, got %+v", c)
	}

	s.PastePattern(0, buf)
	if c := s.ReadCell(0, 0, 0); c != (PatternCell{Note: 60, Vol: 63}) {
		t.Fatalf("paste did not restore cell (0,0): got %+v", c)
	}
	if c := s.ReadCell(0, 31, 8); c != (PatternCell{Note: 72, Effect: 0xF000}) {
		t.Fatalf("paste did not restore cell (31,8): got %+v", c)
	}
}

func TestOrderReadWrite(t *testing.T) {
	s := NewStore()
	s.WriteOrder(2, 5)
	if got := s.ReadOrder(2); got != 5 {
		t.Fatalf("ReadOrder(2) = %d, want 5", got)
	}
	if got := s.ReadOrder(999); got != 0 {
		t.Fatalf("out-of-range ReadOrder should return 0, got %d", got)
	}
}
