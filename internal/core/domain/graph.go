// Package domain contains the core domain models of the make dependency graph.
package domain

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph maps targets to their ordered dependency lists.
// Declaration order is kept: it picks the implicit goal and the order targets are listed in.
// A dependency does not have to be declared itself, undeclared names are leaves.
type Graph struct {
	order       []TargetName
	edges       map[TargetName][]TargetName
	defaultGoal TargetName
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[TargetName][]TargetName),
	}
}

// Declare sets the dependencies of name.
// Declaring a target again replaces its dependencies but keeps its original position.
func (g *Graph) Declare(name TargetName, deps []TargetName) {
	if _, exists := g.edges[name]; !exists {
		g.order = append(g.order, name)
	}
	if deps == nil {
		deps = []TargetName{}
	}
	g.edges[name] = deps
}

// Remove deletes name from the graph. Dependency lists naming it are left alone.
func (g *Graph) Remove(name TargetName) {
	if _, exists := g.edges[name]; !exists {
		return
	}
	delete(g.edges, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Has reports whether name is declared.
func (g *Graph) Has(name TargetName) bool {
	_, ok := g.edges[name]
	return ok
}

// Dependencies returns the declared dependencies of name.
// An undeclared name reports no dependencies and false.
func (g *Graph) Dependencies(name TargetName) ([]TargetName, bool) {
	deps, ok := g.edges[name]
	return deps, ok
}

// Len returns the number of declared targets.
func (g *Graph) Len() int {
	return len(g.order)
}

// Targets yields declared targets in declaration order.
func (g *Graph) Targets() iter.Seq[TargetName] {
	return func(yield func(TargetName) bool) {
		for _, name := range g.order {
			if !yield(name) {
				return
			}
		}
	}
}

// All yields every declared target with its dependencies in declaration order.
func (g *Graph) All() iter.Seq2[TargetName, []TargetName] {
	return func(yield func(TargetName, []TargetName) bool) {
		for _, name := range g.order {
			if !yield(name, g.edges[name]) {
				return
			}
		}
	}
}

// SetDefaultGoal records the goal named by a .DEFAULT_GOAL directive.
// The zero TargetName clears it.
func (g *Graph) SetDefaultGoal(name TargetName) {
	g.defaultGoal = name
}

// DefaultGoal returns the goal set by directive, if any.
func (g *Graph) DefaultGoal() (TargetName, bool) {
	return g.defaultGoal, !g.defaultGoal.IsZero()
}

// ImplicitGoal returns the target built when none is requested:
// the default goal if set, otherwise the first declared target that can be a goal.
func (g *Graph) ImplicitGoal() (TargetName, bool) {
	if goal, ok := g.DefaultGoal(); ok {
		return goal, true
	}
	for _, name := range g.order {
		if goalCandidate(name.String()) {
			return name, true
		}
	}
	return TargetName{}, false
}

// goalCandidate reports whether make would pick name as its first goal.
// Special targets such as .PHONY and pattern rules never are, but a path like ./out is.
func goalCandidate(name string) bool {
	if strings.Contains(name, "%") {
		return false
	}
	return !strings.HasPrefix(name, ".") || strings.Contains(name, "/")
}

// DetectCycle walks the subgraph reachable from roots and reports the first cycle found.
func (g *Graph) DetectCycle(roots []TargetName) error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[TargetName]int)
	var path []TargetName

	var visit func(u TargetName) error
	visit = func(u TargetName) error {
		state[u] = visiting
		path = append(path, u)

		for _, dep := range g.edges[u] {
			switch state[dep] {
			case visiting:
				return buildCycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[u] = visited
		path = path[:len(path)-1]
		return nil
	}

	for _, root := range roots {
		if state[root] == unvisited {
			if err := visit(root); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []TargetName, dep TargetName) error {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}
	names := TargetNameStrings(path[start:])
	names = append(names, dep.String())
	cycle := strings.Join(names, " -> ")
	return zerr.With(zerr.Wrap(ErrCycleDetected, "dependency graph is not acyclic"), "cycle", cycle)
}

// MarshalJSON encodes the graph as {"edges": {target: [deps...]}, "default_goal": target|null}.
// Edges are written in declaration order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"edges":{`)
	for i, name := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name.String())
		if err != nil {
			return nil, err
		}
		deps, err := json.Marshal(TargetNameStrings(g.edges[name]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(deps)
	}
	buf.WriteString(`},"default_goal":`)
	if goal, ok := g.DefaultGoal(); ok {
		val, err := json.Marshal(goal.String())
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	} else {
		buf.WriteString("null")
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the MarshalJSON shape, keeping the order of the edges object.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw struct {
		Edges       json.RawMessage `json:"edges"`
		DefaultGoal *string         `json:"default_goal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*g = *NewGraph()
	if raw.DefaultGoal != nil {
		g.defaultGoal = NewTargetName(*raw.DefaultGoal)
	}
	if len(raw.Edges) == 0 || string(raw.Edges) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Edges))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return zerr.With(zerr.New("edges is not an object"), "token", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return zerr.With(zerr.New("edges key is not a string"), "token", tok)
		}
		var deps []string
		if err := dec.Decode(&deps); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid dependency list"), "target", key)
		}
		g.Declare(NewTargetName(key), NewTargetNames(deps))
	}
	_, err = dec.Token()
	return err
}
