// moves.go deals with move parsing.

package engine

import (
	"fmt"
)

var (
	errorWrongLength       = fmt.Errorf("SAN string is too short")
	errorUnknownFigure     = fmt.Errorf("unknown figure symbol")
	errorBadDisambiguation = fmt.Errorf("bad disambiguation")
	errorBadPromotion      = fmt.Errorf("only pawns on the last rank can be promoted")
	errorNoSuchMove        = fmt.Errorf("no such move")
)

// sanMove collects the constraints parsed out of a SAN string before they
// are matched against the legal moves from the position.
type sanMove struct {
	moveType MoveType
	from, to Square
	capture  Piece
	target   Piece
}

// SANToMove converts a move in standard algebraic notation to a Move.
//
// The set of strings accepted is a slightly different.
//
//	x (capture) presence or correctness is ignored.
//	+ (check) and # (checkmate) is ignored.
//	e.p. (enpassant) is ignored
func (pos *Position) SANToMove(s string) (Move, error) {
	us := pos.SideToMove
	piece := NoPiece
	sm := sanMove{moveType: Normal}
	r, f := -1, -1

	// s[b:e] is the part that still needs to be parsed.
	b, e := 0, len(s)
	if b == e {
		return NullMove, errorWrongLength
	}
	// Skip + (check) and # (checkmate) at the end.
	for e > b && (s[e-1] == '#' || s[e-1] == '+') {
		e--
	}

	if s[b:e] == "o-o" || s[b:e] == "O-O" { // king side castling
		if us == White {
			sm = sanMove{moveType: Castling, from: SquareE1, to: SquareG1, target: WhiteKing}
		} else {
			sm = sanMove{moveType: Castling, from: SquareE8, to: SquareG8, target: BlackKing}
		}
		piece = sm.target
	} else if s[b:e] == "o-o-o" || s[b:e] == "O-O-O" { // queen side castling
		if us == White {
			sm = sanMove{moveType: Castling, from: SquareE1, to: SquareC1, target: WhiteKing}
		} else {
			sm = sanMove{moveType: Castling, from: SquareE8, to: SquareC8, target: BlackKing}
		}
		piece = sm.target
	} else { // all other moves
		// Get the piece.
		if ('a' <= s[b] && s[b] <= 'h') || s[b] == 'x' {
			piece = ColorFigure(us, Pawn)
		} else {
			fig := symbolToFigure[rune(s[b])]
			if fig == NoFigure {
				return NullMove, errorUnknownFigure
			}
			piece = ColorFigure(us, fig)
			b++
		}
		sm.target = piece

		// Skip e.p. when enpassant.
		if e-4 > b && s[e-4:e] == "e.p." {
			e -= 4
		}

		// Check pawn promotion.
		if e-1 < b {
			return NullMove, errorWrongLength
		}
		if !('1' <= s[e-1] && s[e-1] <= '8') {
			// Not a rank, but a promotion.
			if piece.Figure() != Pawn {
				return NullMove, errorBadPromotion
			}
			fig := symbolToFigure[rune(s[e-1])]
			if fig == NoFigure {
				return NullMove, errorUnknownFigure
			}
			sm.moveType = Promotion
			sm.target = ColorFigure(us, fig)
			e--
			if e-1 >= b && s[e-1] == '=' {
				// Sometimes = is inserted before promotion figure.
				e--
			}
		}

		// Handle destination square.
		if e-2 < b {
			return NullMove, errorWrongLength
		}
		var err error
		sm.to, err = SquareFromString(s[e-2 : e])
		if err != nil {
			return NullMove, err
		}
		if sm.to != SquareA1 && pos.IsEnpassantSquare(sm.to) {
			sm.moveType = Enpassant
			sm.capture = ColorFigure(us.Opposite(), Pawn)
		} else {
			sm.capture = pos.Get(sm.to)
		}
		e -= 2

		// Ignore 'x' (capture) or '-' (no capture) if present.
		if e-1 >= b && (s[e-1] == 'x' || s[e-1] == '-') {
			e--
		}

		// Parse disambiguation.
		if e-b > 2 {
			return NullMove, errorBadDisambiguation
		}
		for ; b < e; b++ {
			switch {
			case 'a' <= s[b] && s[b] <= 'h':
				f = int(s[b] - 'a')
			case '1' <= s[b] && s[b] <= '8':
				r = int(s[b] - '1')
			default:
				return NullMove, errorBadDisambiguation
			}
		}
	}

	// Loop through all moves and find out one that matches.
	var moves []Move
	pos.GenerateFigureMoves(piece.Figure(), All, &moves)
	for _, pm := range moves {
		if pm.MoveType() != sm.moveType || pm.Capture() != sm.capture {
			continue
		}
		if pm.To() != sm.to || pm.Target() != sm.target {
			continue
		}
		if r != -1 && pm.From().Rank() != r {
			continue
		}
		if f != -1 && pm.From().File() != f {
			continue
		}
		return pm, nil
	}
	return NullMove, errorNoSuchMove
}

// MoveToUCI converts a move to UCI format.
// The protocol specification at http://wbec-ridderkerk.nl/html/UCIProtocol.html
// incorrectly states that this is the long algebraic notation (LAN).
func (pos *Position) MoveToUCI(move Move) string {
	return move.UCI()
}

// UCIToMove parses a move given in UCI format.
// s can be "a2a4" or "h7h8q" for pawn promotion.
func (pos *Position) UCIToMove(s string) Move {
	from, _ := SquareFromString(s[0:2])
	to, _ := SquareFromString(s[2:4])
	us := pos.SideToMove

	moveType := Normal
	capt := pos.Get(to)
	target := pos.Get(from)

	pi := pos.Get(from)
	if pi.Figure() == Pawn && pos.IsEnpassantSquare(to) {
		moveType = Enpassant
		capt = ColorFigure(us.Opposite(), Pawn)
	}
	if pi == WhiteKing && from == SquareE1 && (to == SquareC1 || to == SquareG1) {
		moveType = Castling
	}
	if pi == BlackKing && from == SquareE8 && (to == SquareC8 || to == SquareG8) {
		moveType = Castling
	}
	if pi.Figure() == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
		moveType = Promotion
		target = ColorFigure(us, symbolToFigure[rune(s[4])])
	}

	return MakeMove(moveType, from, to, capt, target)
}
