package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/fake/internal/core/domain"
)

func TestNewPlan(t *testing.T) {
	g := domain.NewGraph()
	g.Declare(domain.NewTargetName("A"), names("B", "C"))
	g.Declare(domain.NewTargetName("B"), names("D"))
	g.Declare(domain.NewTargetName("C"), names("D", "main.c"))
	g.Declare(domain.NewTargetName("D"), nil)
	g.Declare(domain.NewTargetName("unrelated"), nil)

	plan := domain.NewPlan(g, names("A", "C"))

	assert.Equal(t, []string{"A", "C", "B", "D", "main.c"}, domain.TargetNameStrings(plan.Order))
	assert.Equal(t, 5, plan.Len())
	assert.Equal(t, map[domain.TargetName]int{
		domain.NewTargetName("A"):      0,
		domain.NewTargetName("C"):      0,
		domain.NewTargetName("B"):      1,
		domain.NewTargetName("D"):      1,
		domain.NewTargetName("main.c"): 1,
	}, plan.Depths)
	assert.Empty(t, plan.Deps[domain.NewTargetName("main.c")])
	assert.Equal(t, []string{"D"}, domain.TargetNameStrings(plan.Deps[domain.NewTargetName("B")]))
	assert.NotContains(t, plan.Depths, domain.NewTargetName("unrelated"))
}

func TestNewPlan_DuplicateTargets(t *testing.T) {
	g := domain.NewGraph()
	g.Declare(domain.NewTargetName("A"), nil)

	plan := domain.NewPlan(g, names("A", "A"))
	assert.Equal(t, []string{"A"}, domain.TargetNameStrings(plan.Order))
}
