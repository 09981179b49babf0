package domain

// Plan is the set of tasks a build will visit, computed before any of them starts.
type Plan struct {
	// Order lists every reachable target breadth-first from the requested targets.
	Order []TargetName
	// Deps holds the dependency list of every target in Order.
	Deps map[TargetName][]TargetName
	// Targets are the requested targets.
	Targets []TargetName
	// Depths is the distance of each target from the nearest requested target.
	Depths map[TargetName]int
}

// NewPlan walks g from targets. Names the graph does not declare are leaves.
func NewPlan(g *Graph, targets []TargetName) Plan {
	p := Plan{
		Deps:    make(map[TargetName][]TargetName),
		Targets: targets,
		Depths:  make(map[TargetName]int),
	}

	queue := make([]TargetName, 0, len(targets))
	for _, t := range targets {
		if _, seen := p.Depths[t]; seen {
			continue
		}
		p.Depths[t] = 0
		queue = append(queue, t)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		p.Order = append(p.Order, current)

		deps, _ := g.Dependencies(current)
		p.Deps[current] = deps
		for _, dep := range deps {
			if _, seen := p.Depths[dep]; seen {
				continue
			}
			p.Depths[dep] = p.Depths[current] + 1
			queue = append(queue, dep)
		}
	}

	return p
}

// Len returns the number of tasks in the plan.
func (p Plan) Len() int {
	return len(p.Order)
}
