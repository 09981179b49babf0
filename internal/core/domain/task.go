package domain

// Task represents the build of a single make target.
// Dependencies are passed to make as already satisfied so it does not walk them again.
type Task struct {
	Name         TargetName
	Dependencies []TargetName
	Invocation   *Invocation
}

// Invocation describes how the underlying make is called for every target of a run.
type Invocation struct {
	// Make is the make binary, looked up in PATH when not absolute.
	Make string
	// BuildFile is the path passed to make with -f.
	BuildFile string
	// Dir is the working directory of every make process.
	Dir string
	// Variables holds VAR=value overrides in command-line order.
	Variables []string
	// Terminal attaches make's stdout to a pseudo-terminal so colored output survives.
	Terminal bool
}

// Args returns the make arguments that build target, assuming deps are up to date.
func (inv *Invocation) Args(target TargetName, deps []TargetName) []string {
	args := make([]string, 0, 3+len(inv.Variables)+2*len(deps))
	args = append(args, "-f", inv.BuildFile)
	args = append(args, inv.Variables...)
	args = append(args, target.String())
	for _, dep := range deps {
		args = append(args, "-o", dep.String())
	}
	return args
}

// DatabaseArgs returns the make arguments that print the rule database without building.
func (inv *Invocation) DatabaseArgs() []string {
	args := make([]string, 0, 4+len(inv.Variables))
	args = append(args, "-f", inv.BuildFile)
	args = append(args, inv.Variables...)
	return append(args, "-p", "-q")
}
