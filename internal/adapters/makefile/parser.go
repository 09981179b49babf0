// Package makefile recovers the target dependency graph of a build file,
// either from its source text or from the rule database printed by make.
package makefile

import (
	"strings"

	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/zerr"
)

const defaultGoalVariable = ".DEFAULT_GOAL"

// nearLength is how much of the offending line a syntax error quotes.
const nearLength = 24

// Parse reads build file source text and returns its dependency graph.
//
// Only target headers (a name at column 0 followed by ":" or "::") and the
// .DEFAULT_GOAL directive are interpreted. Every other line is skipped.
// A line that starts like a header must parse in full or the whole parse fails.
func Parse(src string) (*domain.Graph, error) {
	p := newParser(src)
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.graph, nil
}

type parser struct {
	src       string
	pos       int
	line      int
	lineStart int
	graph     *domain.Graph

	// database enables the extra skipping rules of make -p output.
	database bool
	// skipNext drops the next declaration, set by "# Not a target:".
	skipNext bool
	// defaultGoalSet records an earlier .DEFAULT_GOAL assignment for ?=.
	defaultGoalSet bool
}

func newParser(src string) *parser {
	return &parser{
		src:   src,
		line:  1,
		graph: domain.NewGraph(),
	}
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		if err := p.parseLine(); err != nil {
			return err
		}
		if err := p.endLine(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseLine() error {
	if p.database {
		if handled := p.parseDatabaseLine(); handled {
			return nil
		}
	}

	start := p.pos
	name := p.scanName()
	if name == "" {
		p.skipLogicalLine()
		return nil
	}

	if name == defaultGoalVariable {
		return p.parseDefaultGoal()
	}

	if !p.atHeaderColon() {
		p.pos = start
		p.skipLogicalLine()
		return nil
	}
	return p.parseHeader(domain.NewTargetName(name))
}

// atHeaderColon consumes ":" or "::" when it is not the start of an assignment operator.
func (p *parser) atHeaderColon() bool {
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "::="), strings.HasPrefix(rest, ":="):
		return false
	case strings.HasPrefix(rest, "::"):
		p.pos += 2
		return true
	case strings.HasPrefix(rest, ":"):
		p.pos++
		return true
	default:
		return false
	}
}

func (p *parser) parseHeader(target domain.TargetName) error {
	deps := []domain.TargetName{}
	for {
		p.skipSeparators()
		dep := p.scanName()
		if dep == "" {
			break
		}
		deps = append(deps, domain.NewTargetName(dep))
	}

	rest := p.src[p.pos:]
	switch {
	case p.atEOL():
	case strings.HasPrefix(rest, "#"), strings.HasPrefix(rest, ";"):
		p.skipPhysicalLine()
	case isAssignment(rest):
		// Target-specific variable, the rule itself is declared elsewhere.
		p.skipLogicalLine()
		return nil
	case strings.HasPrefix(rest, ":"):
		// Static pattern rule: the prerequisites are patterns make expands itself.
		p.skipLogicalLine()
		return nil
	default:
		return p.syntaxError("unexpected character after dependency list")
	}

	if p.skipNext {
		p.skipNext = false
		return nil
	}
	p.graph.Declare(target, deps)
	return nil
}

// parseDefaultGoal handles a line starting with .DEFAULT_GOAL.
// Only plain and ?= assignments set the goal. Other operators are skipped,
// and ".DEFAULT_GOAL:" is a header like any other.
func (p *parser) parseDefaultGoal() error {
	afterName := p.pos
	p.skipBlanks()
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, ":::="):
		p.pos += 4
	case strings.HasPrefix(rest, "::="):
		p.pos += 3
	case strings.HasPrefix(rest, ":="):
		p.pos += 2
	case strings.HasPrefix(rest, "?="):
		p.pos += 2
		if p.defaultGoalSet {
			p.skipLogicalLine()
			return nil
		}
	case strings.HasPrefix(rest, "="):
		p.pos++
	case p.pos == afterName && strings.HasPrefix(rest, ":"):
		p.pos = afterName
		if !p.atHeaderColon() {
			p.skipLogicalLine()
			return nil
		}
		return p.parseHeader(domain.NewTargetName(defaultGoalVariable))
	default:
		p.skipLogicalLine()
		return nil
	}
	p.defaultGoalSet = true

	p.skipBlanks()
	goal := p.scanName()
	p.skipBlanks()

	switch {
	case p.atEOL():
	case strings.HasPrefix(p.src[p.pos:], "#"):
		p.skipPhysicalLine()
	default:
		return p.syntaxError(".DEFAULT_GOAL takes a single target name")
	}

	if goal == "" {
		p.graph.SetDefaultGoal(domain.TargetName{})
		return nil
	}
	p.graph.SetDefaultGoal(domain.NewTargetName(goal))
	return nil
}

// scanName consumes a run of name characters. A backslash that starts a line continuation ends the name.
func (p *parser) scanName() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !isNameChar(c) || p.atContinuation() {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// skipSeparators consumes blanks, order-only bars and line continuations between dependencies.
func (p *parser) skipSeparators() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '|':
			p.pos++
		case p.atContinuation():
			p.consumeContinuation()
		default:
			return
		}
	}
}

func (p *parser) skipBlanks() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) atContinuation() bool {
	rest := p.src[p.pos:]
	return strings.HasPrefix(rest, "\\\n") || strings.HasPrefix(rest, "\\\r\n")
}

func (p *parser) consumeContinuation() {
	if p.src[p.pos+1] == '\r' {
		p.pos += 3
	} else {
		p.pos += 2
	}
	p.newLine()
}

func (p *parser) atEOL() bool {
	rest := p.src[p.pos:]
	return rest == "" || rest[0] == '\n' || strings.HasPrefix(rest, "\r\n")
}

// skipPhysicalLine moves to the line terminator without consuming it.
func (p *parser) skipPhysicalLine() {
	i := strings.IndexByte(p.src[p.pos:], '\n')
	if i < 0 {
		p.pos = len(p.src)
		return
	}
	p.pos += i
	if p.pos > 0 && p.src[p.pos-1] == '\r' {
		p.pos--
	}
}

// skipLogicalLine skips a line and every line joined to it by a trailing backslash.
func (p *parser) skipLogicalLine() {
	for {
		p.skipPhysicalLine()
		if p.pos == 0 || p.src[p.pos-1] != '\\' || p.pos >= len(p.src) {
			return
		}
		p.pos--
		p.consumeContinuation()
	}
}

// endLine consumes the terminator of the current line.
func (p *parser) endLine() error {
	rest := p.src[p.pos:]
	switch {
	case rest == "":
		return nil
	case rest[0] == '\n':
		p.pos++
	case strings.HasPrefix(rest, "\r\n"):
		p.pos += 2
	default:
		return p.syntaxError("expected end of line")
	}
	p.newLine()
	return nil
}

func (p *parser) newLine() {
	p.line++
	p.lineStart = p.pos
}

func (p *parser) syntaxError(msg string) error {
	near := p.src[p.pos:]
	if i := strings.IndexAny(near, "\r\n"); i >= 0 {
		near = near[:i]
	}
	if len(near) > nearLength {
		near = near[:nearLength]
	}
	err := zerr.Wrap(domain.ErrInvalidBuildFile, msg)
	err = zerr.With(err, "line", p.line)
	err = zerr.With(err, "column", p.pos-p.lineStart+1)
	return zerr.With(err, "near", near)
}

func isNameChar(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ':', '#', '|', ';', '=':
		return false
	default:
		return true
	}
}

// isAssignment reports whether s starts with one of make's assignment operators.
func isAssignment(s string) bool {
	for _, op := range []string{"=", ":=", "::=", ":::=", "?=", "+=", "!="} {
		if strings.HasPrefix(s, op) {
			return true
		}
	}
	return false
}
