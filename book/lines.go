package book

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// moveNumbers matches "1." and "1..." style move numbers.
var moveNumbers = regexp.MustCompile(`[0-9]+\.+`)

// LineBook is a book of whole opening lines. It follows every line that
// matches the moves played so far and suggests the continuation shared by
// most of them, the earliest line winning ties.
type LineBook struct {
	lines  [][]int
	played []int
}

// LoadLines reads a CSV book. The last field of each record is the line as
// space separated coordinate moves, optionally with move numbers; earlier
// fields (code, name) are ignored. Lines starting with '#' are comments.
func LoadLines(r io.Reader) (*LineBook, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lb := &LineBook{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, err := parseLine(record[len(record)-1])
		if err != nil {
			row, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", row, err)
		}
		if len(line) > 0 {
			lb.lines = append(lb.lines, line)
		}
	}
	return lb, nil
}

// NewLineBook builds a book from lines of coordinate moves.
func NewLineBook(lines ...[]string) (*LineBook, error) {
	lb := &LineBook{}
	for _, l := range lines {
		line, err := parseLine(strings.Join(l, " "))
		if err != nil {
			return nil, err
		}
		lb.lines = append(lb.lines, line)
	}
	return lb, nil
}

func parseLine(text string) ([]int, error) {
	var line []int
	for _, tok := range strings.Fields(moveNumbers.ReplaceAllString(text, " ")) {
		v, err := EncodeUCI(tok)
		if err != nil {
			return nil, err
		}
		line = append(line, v)
	}
	return line, nil
}

func (lb *LineBook) Len() int { return len(lb.lines) }

// follows reports whether line starts with the moves played so far.
func (lb *LineBook) follows(line []int) bool {
	if len(line) < len(lb.played) {
		return false
	}
	for i, v := range lb.played {
		if line[i] != v {
			return false
		}
	}
	return true
}

func (lb *LineBook) AddMove(move int) bool {
	lb.played = append(lb.played, move)
	for _, line := range lb.lines {
		if len(line) > len(lb.played) && lb.follows(line) {
			return true
		}
	}
	return false
}

func (lb *LineBook) NextMove() (int, bool) {
	counts := make(map[int]int)
	var order []int
	for _, line := range lb.lines {
		if len(line) <= len(lb.played) || !lb.follows(line) {
			continue
		}
		next := line[len(lb.played)]
		if counts[next] == 0 {
			order = append(order, next)
		}
		counts[next]++
	}
	if len(order) == 0 {
		return 0, false
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}
