package deployment

import (
	"errors"
	"fmt"

	"github.com/arenaworks/arenakit/internal/contracts"
)

// ErrCircularDependency aborts planning before any deployment is attempted.
var ErrCircularDependency = errors.New("circular dependency in deployment plan")

// Plan topologically orders the requested contract types so that every
// in-request dependency of a type precedes it. Dependencies outside the
// request are assumed satisfied elsewhere and do not constrain the order.
// Ties are broken in request order, which keeps the plan stable within a
// run.
func Plan(registry *Registry, requested []contracts.ContractType) ([]PlanItem, error) {
	inRequest := make(map[contracts.ContractType]struct{}, len(requested))
	for _, t := range requested {
		if _, ok := registry.Get(t); !ok {
			return nil, fmt.Errorf("contract type %s is not registered", t)
		}
		inRequest[t] = struct{}{}
	}

	// In-degree per requested type, counting only edges from in-request
	// dependencies.
	inDegree := make(map[contracts.ContractType]int, len(inRequest))
	dependents := make(map[contracts.ContractType][]contracts.ContractType)
	for t := range inRequest {
		s, _ := registry.Get(t)
		for _, dep := range s.DependsOn() {
			if _, ok := inRequest[dep]; !ok {
				continue
			}
			inDegree[t]++
			dependents[dep] = append(dependents[dep], t)
		}
	}

	queue := make([]contracts.ContractType, 0, len(inRequest))
	seen := make(map[contracts.ContractType]struct{}, len(inRequest))
	for _, t := range requested {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if inDegree[t] == 0 {
			queue = append(queue, t)
		}
	}

	plan := make([]PlanItem, 0, len(inRequest))
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		s, _ := registry.Get(t)
		plan = append(plan, PlanItem{Type: t, DependsOn: s.DependsOn()})

		for _, dependent := range dependents[t] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(plan) < len(inRequest) {
		return nil, ErrCircularDependency
	}

	return plan, nil
}
