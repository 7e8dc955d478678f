// Package braces tracks curly-brace nesting through a source file. It reports
// the depth and the positions of still-open braces at chosen lines, closers
// that have no matching opener, and openers left unclosed at end of file.
package braces

import (
	"fmt"
	"io"
	"sort"
)

// Mode selects what the scanner treats as a brace
type Mode int

const (
	// ModePlain counts every '{' and '}' byte in the file.
	ModePlain Mode = iota
	// ModeCode skips braces inside JavaScript-style string literals and
	// comments. The ${...} bodies of template literals are scanned as code.
	// Regular-expression literals are not recognised.
	ModeCode
)

func (m Mode) String() string {
	if m == ModeCode {
		return "code"
	}
	return "plain"
}

// Position is a 1-based line and column
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Snapshot is the scanner state at the end of a line
type Snapshot struct {
	Line  int        `json:"line"`
	Depth int        `json:"depth"`
	Open  []Position `json:"open"`
}

type Options struct {
	// TargetLines are snapshotted at the end of each line.
	TargetLines []int
	// From and To snapshot every line in the inclusive range when To >= From > 0.
	From int
	To   int
	Mode Mode
}

func (o Options) wants(line int) bool {
	if o.From > 0 && o.To >= o.From && line >= o.From && line <= o.To {
		return true
	}
	for _, l := range o.TargetLines {
		if l == line {
			return true
		}
	}
	return false
}

type Report struct {
	Mode       Mode       `json:"mode"`
	Lines      int        `json:"lines"`
	MaxDepth   int        `json:"max_depth"`
	Snapshots  []Snapshot `json:"snapshots,omitempty"`
	Unexpected []Position `json:"unexpected,omitempty"`
	Unclosed   []Position `json:"unclosed,omitempty"`
	// Unterminated is where a block comment or template literal still open
	// at end of file started. Code mode only.
	Unterminated *Position `json:"unterminated,omitempty"`
}

// Balanced reports whether every opener was closed, no closer was stray and
// the file did not end inside a comment or template literal
func (r *Report) Balanced() bool {
	return len(r.Unexpected) == 0 && len(r.Unclosed) == 0 && r.Unterminated == nil
}

// FirstProblem returns the earliest stray closer, unclosed opener or
// unterminated literal
func (r *Report) FirstProblem() (Position, bool) {
	all := make([]Position, 0, len(r.Unexpected)+len(r.Unclosed)+1)
	all = append(all, r.Unexpected...)
	all = append(all, r.Unclosed...)
	if r.Unterminated != nil {
		all = append(all, *r.Unterminated)
	}
	if len(all) == 0 {
		return Position{}, false
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})
	return all[0], true
}

type lexState int

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateSingleQuote
	stateDoubleQuote
	stateTemplate
)

// templateExpr is an open ${ expression
type templateExpr struct {
	depth   int      // brace depth when the expression started
	at      Position // the '$'
	literal Position // the backtick of the enclosing template
}

type scanner struct {
	opts      Options
	report    *Report
	stack     []Position
	templates []templateExpr
	state     lexState
	// start of the comment or literal the scanner is in
	literal   Position
	// a backslash ended the previous line inside a quoted string
	continued bool
	line      int
	col       int
}

// Scan reads r to the end and returns the nesting report.
// A closer met at depth zero is recorded in Unexpected and leaves depth at zero.
func Scan(r io.Reader, opts Options) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	s := &scanner{
		opts:   opts,
		report: &Report{Mode: opts.Mode},
		line:   1,
		col:    0,
	}

	runes := []rune(string(data))
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		s.col++

		if c == '\n' {
			switch s.state {
			case stateLineComment:
				s.state = stateCode
			case stateSingleQuote, stateDoubleQuote:
				// quoted strings end at the line unless the newline is escaped
				if !s.continued {
					s.state = stateCode
				}
			}
			s.continued = false
			s.endLine()
			continue
		}

		if opts.Mode == ModePlain {
			s.brace(c)
			continue
		}

		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch s.state {
		case stateCode:
			switch {
			case c == '/' && next == '/':
				s.state = stateLineComment
				i++
				s.col++
			case c == '/' && next == '*':
				s.enter(stateBlockComment)
				i++
				s.col++
			case c == '\'':
				s.enter(stateSingleQuote)
			case c == '"':
				s.enter(stateDoubleQuote)
			case c == '`':
				s.enter(stateTemplate)
			case c == '}' && len(s.templates) > 0 && len(s.stack) == s.templates[len(s.templates)-1].depth:
				expr := s.templates[len(s.templates)-1]
				s.templates = s.templates[:len(s.templates)-1]
				s.state = stateTemplate
				s.literal = expr.literal
			default:
				s.brace(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				s.state = stateCode
				i++
				s.col++
			}
		case stateSingleQuote, stateDoubleQuote:
			switch {
			case c == '\\':
				if next == '\n' {
					s.continued = true
				} else {
					i++
					s.col++
				}
			case c == '\'' && s.state == stateSingleQuote, c == '"' && s.state == stateDoubleQuote:
				s.state = stateCode
			}
		case stateTemplate:
			switch {
			case c == '\\':
				if next != '\n' {
					i++
					s.col++
				}
			case c == '`':
				s.state = stateCode
			case c == '$' && next == '{':
				s.templates = append(s.templates, templateExpr{
					depth:   len(s.stack),
					at:      Position{Line: s.line, Column: s.col},
					literal: s.literal,
				})
				s.state = stateCode
				i++
				s.col++
			}
		}
	}

	if s.col > 0 {
		s.endLine()
	}

	s.report.Unclosed = append(s.report.Unclosed, s.stack...)
	for _, expr := range s.templates {
		s.report.Unclosed = append(s.report.Unclosed, expr.at)
	}
	if s.state == stateBlockComment || s.state == stateTemplate {
		start := s.literal
		s.report.Unterminated = &start
	}
	return s.report, nil
}

func (s *scanner) enter(state lexState) {
	s.state = state
	s.literal = Position{Line: s.line, Column: s.col}
}

func (s *scanner) brace(c rune) {
	switch c {
	case '{':
		s.stack = append(s.stack, Position{Line: s.line, Column: s.col})
		if len(s.stack) > s.report.MaxDepth {
			s.report.MaxDepth = len(s.stack)
		}
	case '}':
		if len(s.stack) == 0 {
			s.report.Unexpected = append(s.report.Unexpected, Position{Line: s.line, Column: s.col})
			return
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *scanner) endLine() {
	s.report.Lines = s.line
	if s.opts.wants(s.line) {
		open := make([]Position, len(s.stack))
		copy(open, s.stack)
		s.report.Snapshots = append(s.report.Snapshots, Snapshot{
			Line:  s.line,
			Depth: len(s.stack),
			Open:  open,
		})
	}
	s.line++
	s.col = 0
}
