package book_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bb "chessbot/bitboard"
	"chessbot/board"
	"chessbot/book"

	"github.com/corentings/chess/v2"
)

func mustEncode(t *testing.T, s string) int {
	t.Helper()
	v, err := book.EncodeUCI(s)
	if err != nil {
		t.Fatalf("EncodeUCI(%q): %v", s, err)
	}
	return v
}

func TestEncodeDecodeUCI(t *testing.T) {
	for _, s := range []string{"e2e4", "a1h8", "e7e8q", "b2b1n"} {
		if got := book.DecodeUCI(mustEncode(t, s)); got != s {
			t.Fatalf("DecodeUCI(EncodeUCI(%q)) = %q", s, got)
		}
	}
	if v := mustEncode(t, "e2e4"); v != int(bb.E2)|int(bb.E4)<<6 {
		t.Fatalf("e2e4 encoded as %d", v)
	}
	for _, s := range []string{"", "e2", "e2e4x", "i2e4", "e2e9", "e7e8k"} {
		if _, err := book.EncodeUCI(s); !errors.Is(err, book.ErrInvalidMove) {
			t.Fatalf("EncodeUCI(%q) err = %v, want ErrInvalidMove", s, err)
		}
	}
}

func TestLineBookFollowsMostCommonLine(t *testing.T) {
	lb, err := book.NewLineBook(
		[]string{"e2e4", "e7e5", "g1f3"},
		[]string{"e2e4", "c7c5"},
		[]string{"d2d4", "d7d5"},
		[]string{"e2e4", "e7e5", "f1c4"},
	)
	if err != nil {
		t.Fatal(err)
	}
	steps := []struct {
		play   string
		inBook bool
		next   string
	}{
		{"", true, "e2e4"},
		{"e2e4", true, "e7e5"},
		{"e7e5", true, "g1f3"},
		{"g1f3", false, ""},
	}
	for _, step := range steps {
		if step.play != "" {
			if got := lb.AddMove(mustEncode(t, step.play)); got != step.inBook {
				t.Fatalf("AddMove(%s) = %v, want %v", step.play, got, step.inBook)
			}
		}
		v, ok := lb.NextMove()
		if step.next == "" {
			if ok {
				t.Fatalf("after %s: unexpected book move %s", step.play, book.DecodeUCI(v))
			}
			continue
		}
		if !ok || book.DecodeUCI(v) != step.next {
			t.Fatalf("after %s: NextMove = %s, %v; want %s", step.play, book.DecodeUCI(v), ok, step.next)
		}
	}
}

func TestLineBookLeavesOnUnknownMove(t *testing.T) {
	lb, err := book.NewLineBook([]string{"e2e4", "e7e5"})
	if err != nil {
		t.Fatal(err)
	}
	if lb.AddMove(mustEncode(t, "d2d4")) {
		t.Fatal("d2d4 should leave the book")
	}
	if _, ok := lb.NextMove(); ok {
		t.Fatal("no move expected after leaving the book")
	}
}

const csvBook = `# eco,name,moves
C20,King's Pawn,1. e2e4 e7e5
B20,Sicilian,"1. e2e4 c7c5 2. g1f3"
D00,Queen's Pawn,1. d2d4 1... d7d5
`

func TestLoadLines(t *testing.T) {
	lb, err := book.LoadLines(strings.NewReader(csvBook))
	if err != nil {
		t.Fatal(err)
	}
	if lb.Len() != 3 {
		t.Fatalf("Len = %d, want 3", lb.Len())
	}
	if v, ok := lb.NextMove(); !ok || book.DecodeUCI(v) != "e2e4" {
		t.Fatalf("NextMove = %s, %v", book.DecodeUCI(v), ok)
	}
	lb.AddMove(mustEncode(t, "d2d4"))
	if v, ok := lb.NextMove(); !ok || book.DecodeUCI(v) != "d7d5" {
		t.Fatalf("NextMove after d2d4 = %s, %v", book.DecodeUCI(v), ok)
	}
}

func TestLoadLinesRejectsBadMove(t *testing.T) {
	_, err := book.LoadLines(strings.NewReader("A00,ok,e2e4\nA01,bad,e2e9\n"))
	if !errors.Is(err, book.ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error %q does not name the line", err)
	}
}

type entry struct {
	key    uint64
	move   uint16
	weight uint16
}

func polyglotMove(t *testing.T, s string) uint16 {
	t.Helper()
	from, err := bb.ParseSquare(s[:2])
	if err != nil {
		t.Fatal(err)
	}
	to, err := bb.ParseSquare(s[2:4])
	if err != nil {
		t.Fatal(err)
	}
	return uint16(to.File()) | uint16(to.Rank())<<3 | uint16(from.File())<<6 | uint16(from.Rank())<<9
}

func polyglotBytes(entries []entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		binary.Write(&buf, binary.BigEndian, e.key)
		binary.Write(&buf, binary.BigEndian, e.move)
		binary.Write(&buf, binary.BigEndian, e.weight)
		binary.Write(&buf, binary.BigEndian, uint32(0))
	}
	return buf.Bytes()
}

func key(t *testing.T, p *board.Position) uint64 {
	t.Helper()
	k, err := book.PolyglotKey(chess.NewZobristHasher(), p)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestPolyglotStartKey(t *testing.T) {
	if k := key(t, board.NewPosition()); k != 0x463b96181691fc9c {
		t.Fatalf("start key = %#x", k)
	}
}

func testPolyglotData(t *testing.T) []byte {
	start := board.NewPosition()
	startKey := key(t, start)
	m, err := start.MoveFromUCI("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	start.MakeMove(m)
	afterKey := key(t, start)

	entries := []entry{
		{startKey, polyglotMove(t, "e2e4"), 10},
		{startKey, polyglotMove(t, "d2d4"), 20},
		{afterKey, polyglotMove(t, "e7e5"), 5},
	}
	if afterKey < startKey {
		entries = append(entries[2:], entries[:2]...)
	}
	return polyglotBytes(entries)
}

func TestPolyglotBook(t *testing.T) {
	pb, err := book.LoadPolyglot(bytes.NewReader(testPolyglotData(t)))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := pb.NextMove(); !ok || book.DecodeUCI(v) != "d2d4" {
		t.Fatalf("NextMove = %s, %v; want the heavier d2d4", book.DecodeUCI(v), ok)
	}
	if !pb.AddMove(mustEncode(t, "e2e4")) {
		t.Fatal("e2e4 should stay in book")
	}
	if v, ok := pb.NextMove(); !ok || book.DecodeUCI(v) != "e7e5" {
		t.Fatalf("NextMove after e2e4 = %s, %v", book.DecodeUCI(v), ok)
	}
	if pb.AddMove(mustEncode(t, "e7e5")) {
		t.Fatal("e7e5 should leave the book")
	}
	if pb.AddMove(mustEncode(t, "e2e5")) {
		t.Fatal("an illegal move cannot be in book")
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "book.bin")
	if err := os.WriteFile(bin, testPolyglotData(t), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "book.csv")
	if err := os.WriteFile(csvPath, []byte(csvBook), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := book.Load(bin)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*book.PolyglotBook); !ok {
		t.Fatalf("%s loaded as %T", bin, b)
	}
	b, err = book.Load(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*book.LineBook); !ok {
		t.Fatalf("%s loaded as %T", csvPath, b)
	}
	if _, err := book.Load(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
