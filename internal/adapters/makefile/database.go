package makefile

import (
	"strings"

	"go.trai.ch/fake/internal/core/domain"
)

const notATargetMarker = "# Not a target:"

// ParseDatabase reads the output of make -p and returns the dependency graph
// of the targets the build file itself declares.
//
// Besides the rules of Parse it skips define blocks and the entry following a
// "# Not a target:" comment. It then prunes built-in targets (leading "."),
// pattern rules (names containing "%") and buildFile itself, which make lists
// as a target and as a dependency of nothing in particular.
func ParseDatabase(dump, buildFile string) (*domain.Graph, error) {
	p := newParser(dump)
	p.database = true
	if err := p.run(); err != nil {
		return nil, err
	}
	prune(p.graph, buildFile)
	return p.graph, nil
}

// parseDatabaseLine handles the lines only found in a database dump.
// It reports whether the line was consumed.
func (p *parser) parseDatabaseLine() bool {
	rest := p.src[p.pos:]
	if strings.HasPrefix(rest, notATargetMarker) {
		p.skipNext = true
		p.skipPhysicalLine()
		return true
	}
	if isDirective(rest, "define") {
		p.skipDefine()
		return true
	}
	return false
}

// skipDefine moves to the terminator of the matching endef line.
func (p *parser) skipDefine() {
	depth := 0
	for {
		line := strings.TrimLeft(p.currentLine(), " \t")
		switch {
		case isDirective(line, "define"):
			depth++
		case isDirective(line, "endef"):
			depth--
		}
		p.skipPhysicalLine()
		if depth == 0 || p.pos >= len(p.src) {
			return
		}
		if err := p.endLine(); err != nil {
			return
		}
	}
}

func (p *parser) currentLine() string {
	rest := p.src[p.pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		return strings.TrimSuffix(rest[:i], "\r")
	}
	return rest
}

// isDirective reports whether line starts with the keyword followed by a blank or the end of the line.
func isDirective(line, keyword string) bool {
	if !strings.HasPrefix(line, keyword) {
		return false
	}
	rest := line[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r'
}

func prune(g *domain.Graph, buildFile string) {
	file := domain.NewTargetName(buildFile)

	var drop []domain.TargetName
	for name := range g.Targets() {
		s := name.String()
		if strings.HasPrefix(s, ".") || strings.Contains(s, "%") || name == file {
			drop = append(drop, name)
		}
	}
	for _, name := range drop {
		g.Remove(name)
	}

	for name, deps := range g.All() {
		kept := deps[:0:0]
		for _, dep := range deps {
			if dep != file {
				kept = append(kept, dep)
			}
		}
		if len(kept) != len(deps) {
			g.Declare(name, kept)
		}
	}
}
