package board

import (
	"fmt"
	"strconv"
	"strings"

	bb "chessbot/bitboard"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func pieceFromChar(ch rune) Piece {
	i := strings.IndexRune(pieceLetters, ch)
	if i <= 0 || ch == ' ' {
		return NoPiece
	}
	return Piece(i)
}

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// ParseFEN builds a Position from Forsyth-Edwards Notation. The placement, side,
// castling and en-passant fields are required; the two move counters are optional.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fenError("expected 4 to 6 fields, got %d", len(fields))
	}
	p := newEmptyPosition()

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fenError("expected 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := pieceFromChar(ch)
			if pc == NoPiece {
				return nil, fenError("unrecognized piece %q", ch)
			}
			if file >= 8 {
				return nil, fenError("rank %d is longer than 8 squares", rank+1)
			}
			if pc.Type() == King && p.pieces[pc.Color()][King] != 0 {
				return nil, fenError("more than one %v king", pc.Color())
			}
			p.put(bb.NewSquare(file, rank), pc)
			file++
		}
		if file != 8 {
			return nil, fenError("rank %d does not have 8 squares", rank+1)
		}
	}
	if p.pieces[White][King] == 0 || p.pieces[Black][King] == 0 {
		return nil, fenError("both kings are required")
	}

	switch fields[1] {
	case "w":
		p.side = White
	case "b":
		p.side = Black
	default:
		return nil, fenError("side to move must be 'w' or 'b', got %q", fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			var r CastlingRights
			switch ch {
			case 'K':
				r = WhiteKingside
			case 'Q':
				r = WhiteQueenside
			case 'k':
				r = BlackKingside
			case 'q':
				r = BlackQueenside
			default:
				return nil, fenError("invalid castling character %q", ch)
			}
			if p.castling&r != 0 {
				return nil, fenError("repeated castling character %q", ch)
			}
			p.castling |= r
		}
	}

	if fields[3] != "-" {
		sq, err := bb.ParseSquare(fields[3])
		if err != nil {
			return nil, fenError("en passant: %v", err)
		}
		if (p.side == White && sq.Rank() != 5) || (p.side == Black && sq.Rank() != 2) {
			return nil, fenError("en passant square %v is not on the capture rank", sq)
		}
		p.epFile = int8(sq.File())
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fenError("halfmove clock %q", fields[4])
		}
		p.halfmove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fenError("fullmove number %q", fields[5])
		}
		p.fullmove = n
	}

	p.hash = keys.Hash(p)
	p.history[p.hash] = 1
	return p, nil
}

// ToFEN serialises the position, move counters included.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.mailbox[bb.NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.side == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if p.castling == NoCastling {
		sb.WriteByte('-')
	} else {
		for i, ch := range "KQkq" {
			if p.castling&(1<<i) != 0 {
				sb.WriteRune(ch)
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())
	fmt.Fprintf(&sb, " %d %d", p.halfmove, p.fullmove)
	return sb.String()
}
