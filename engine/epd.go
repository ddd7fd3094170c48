// epd.go implements parsing of chess positions in FEN and Extended
// Position Description (EPD) notation.
//
// EPD extends a FEN's four position fields with zero or more ";"-separated
// operations, e.g. `bm Qd2 Qe1; id "BK.14";`.

package engine

import (
	"fmt"
	"strings"
)

// EPD holds a parsed position together with any analysis operations
// attached to it.
type EPD struct {
	Position *Position
	Id       string
	BestMove []Move
	Comment  map[string]string
}

// ParseFEN parses a FEN string and returns an EPD with no operations.
func ParseFEN(line string) (*EPD, error) {
	pos, err := PositionFromFEN(line)
	if err != nil {
		return nil, err
	}
	return &EPD{Position: pos, Comment: make(map[string]string)}, nil
}

// splitLeadingFields pulls n whitespace-separated fields off the front of s
// and returns them together with the untouched remainder of the string.
func splitLeadingFields(s string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	i := 0
	for len(fields) < n {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		start := i
		for i < len(s) && s[i] != ' ' {
			i++
		}
		if start == i {
			break
		}
		fields = append(fields, s[start:i])
	}
	return fields, strings.TrimSpace(s[i:])
}

// ParseEPD parses an EPD line: four FEN position fields followed by zero or
// more ";"-terminated operations.
func ParseEPD(line string) (*EPD, error) {
	fields, rest := splitLeadingFields(line, 4)
	if len(fields) != 4 {
		return nil, fmt.Errorf("epd: expected 4 position fields, got %d", len(fields))
	}

	pos := NewPosition()
	if err := ParsePiecePlacement(fields[0], pos); err != nil {
		return nil, err
	}
	if err := ParseSideToMove(fields[1], pos); err != nil {
		return nil, err
	}
	if err := ParseCastlingAbility(fields[2], pos); err != nil {
		return nil, err
	}
	if err := ParseEnpassantSquare(fields[3], pos); err != nil {
		return nil, err
	}

	epd := &EPD{Position: pos, Comment: make(map[string]string)}
	for _, op := range strings.Split(rest, ";") {
		op = strings.TrimSpace(op)
		if op == "" {
			continue
		}
		opFields := strings.SplitN(op, " ", 2)
		opcode := opFields[0]
		operands := ""
		if len(opFields) > 1 {
			operands = strings.TrimSpace(opFields[1])
		}

		switch opcode {
		case "bm":
			for _, tok := range strings.Fields(operands) {
				move, err := epd.Position.SANToMove(tok)
				if err != nil {
					return nil, fmt.Errorf("epd: invalid bm %q: %v", tok, err)
				}
				epd.BestMove = append(epd.BestMove, move)
			}
		case "id":
			epd.Id = strings.Trim(operands, "\"")
		default:
			epd.Comment[opcode] = strings.Trim(operands, "\"")
		}
	}
	return epd, nil
}

func (e *EPD) String() string {
	s := FormatPiecePlacement(e.Position)
	s += " " + FormatSideToMove(e.Position)
	s += " " + FormatCastlingAbility(e.Position)
	s += " " + FormatEnpassantSquare(e.Position)

	for _, bm := range e.BestMove {
		s += " bm " + bm.LAN() + ";"
	}
	if e.Id != "" {
		s += " id \"" + e.Id + "\";"
	}
	for k, v := range e.Comment {
		s += " " + k + " \"" + v + "\";"
	}
	return s
}
