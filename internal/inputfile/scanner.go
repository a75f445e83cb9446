package inputfile

import (
	"bufio"
	"os"
	"strings"

	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// row is one non-blank, comment-stripped input line, tokenized on
// whitespace, with its 1-based source line number for error messages.
type row struct {
	tokens []string
	line   int
}

// scanner walks the rows of an input file in order, used by the section
// parsers in parse.go.
type scanner struct {
	rows []row
	pos  int
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = line[:i]
	}
	return line
}

func newScannerFromFile(path string) (*scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vnferrors.NewParseError(0, "cannot open input file: "+err.Error())
	}
	defer f.Close()

	var rows []row
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := stripComment(sc.Text())
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, row{tokens: fields, line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, vnferrors.NewParseError(lineNo, "error reading input file: "+err.Error())
	}
	return &scanner{rows: rows}, nil
}

func (s *scanner) next() (row, error) {
	if s.pos >= len(s.rows) {
		return row{}, vnferrors.NewParseError(0, "unexpected end of input file")
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *scanner) atEOF() bool { return s.pos >= len(s.rows) }
