package deployment

import (
	"fmt"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Spec is the per-type capability record: declared dependencies, a pure
	// constructor-params builder, and the authorization calls the type wants
	// after deployment. Each registry entry encodes its own idempotency rule
	// for permissions; the orchestrator does not second-guess it.
	Spec interface {
		Type() contracts.ContractType
		DependsOn() []contracts.ContractType
		BuildDeployParams(addresses map[contracts.ContractType]common.Address) (DeployParams, error)
		PermissionActions(pctx PermissionContext) []PermissionAction
	}

	// Registry holds one Spec per contract type, in insertion order.
	Registry struct {
		order []contracts.ContractType
		specs map[contracts.ContractType]Spec
	}

	spec struct {
		contractType contracts.ContractType
		dependsOn    []contracts.ContractType
		buildArgs    func(addresses map[contracts.ContractType]common.Address) ([]any, error)
		permissions  func(pctx PermissionContext) []PermissionAction
	}
)

func (s *spec) Type() contracts.ContractType        { return s.contractType }
func (s *spec) DependsOn() []contracts.ContractType { return s.dependsOn }

func (s *spec) BuildDeployParams(addresses map[contracts.ContractType]common.Address) (DeployParams, error) {
	args, err := s.buildArgs(addresses)
	if err != nil {
		return DeployParams{}, err
	}
	return DeployParams{Type: s.contractType, ConstructorArgs: args}, nil
}

func (s *spec) PermissionActions(pctx PermissionContext) []PermissionAction {
	if s.permissions == nil {
		return nil
	}
	return s.permissions(pctx)
}

// dependencyAddress resolves one constructor dependency, failing loudly if
// the executor handed us an incomplete address set.
func dependencyAddress(addresses map[contracts.ContractType]common.Address, t contracts.ContractType) (common.Address, error) {
	addr, ok := addresses[t]
	if !ok {
		return common.Address{}, fmt.Errorf("missing dependency address for %s", t)
	}
	return addr, nil
}

// grantWhenWired emits an authorization call on target granting fn to
// grantee. The grant is needed when either side was deployed in this batch:
// a fresh grantee has never been authorized, and a fresh target lost every
// grant its predecessor held. Both addresses must be known.
func grantWhenWired(pctx PermissionContext, target, grantee contracts.ContractType, fn, desc string) []PermissionAction {
	if !pctx.InBatch(target) && !pctx.InBatch(grantee) {
		return nil
	}

	targetAddr, ok := pctx.Address(target)
	if !ok {
		return nil
	}
	granteeAddr, ok := pctx.Address(grantee)
	if !ok {
		return nil
	}

	return []PermissionAction{{
		Target:        target,
		TargetAddress: targetAddr,
		Function:      fn,
		Args:          []any{granteeAddr},
		Description:   desc,
	}}
}

// NewRegistry builds the closed contract type registry. The controller is
// baked into constructor params where a type needs an admin identity.
func NewRegistry(controller common.Address) *Registry {
	r := &Registry{specs: make(map[contracts.ContractType]Spec)}

	r.add(&spec{
		contractType: contracts.TypeEventBus,
		buildArgs: func(_ map[contracts.ContractType]common.Address) ([]any, error) {
			return []any{controller}, nil
		},
		permissions: func(pctx PermissionContext) []PermissionAction {
			var actions []PermissionAction
			for _, publisher := range []contracts.ContractType{contracts.TypeScore, contracts.TypeMatch} {
				actions = append(actions, grantWhenWired(pctx,
					contracts.TypeEventBus, publisher,
					"authorizePublisher",
					fmt.Sprintf("allow %s to publish game events", publisher),
				)...)
			}
			if pctx.ControllerAddress != nil && pctx.InBatch(contracts.TypeEventBus) {
				if busAddr, ok := pctx.Address(contracts.TypeEventBus); ok {
					actions = append(actions, PermissionAction{
						Target:        contracts.TypeEventBus,
						TargetAddress: busAddr,
						Function:      "authorizePublisher",
						Args:          []any{*pctx.ControllerAddress},
						Description:   "allow the controller to publish administrative events",
					})
				}
			}
			return actions
		},
	})

	r.add(&spec{
		contractType: contracts.TypeHeap,
		buildArgs: func(_ map[contracts.ContractType]common.Address) ([]any, error) {
			return nil, nil
		},
	})

	r.add(&spec{
		contractType: contracts.TypeScore,
		dependsOn:    []contracts.ContractType{contracts.TypeEventBus},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			bus, err := dependencyAddress(addresses, contracts.TypeEventBus)
			if err != nil {
				return nil, err
			}
			return []any{bus}, nil
		},
		permissions: func(pctx PermissionContext) []PermissionAction {
			var actions []PermissionAction
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypeScore, contracts.TypeMatch,
				"authorizeRecorder",
				"allow Match to record results into Score",
			)...)
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypeScore, contracts.TypeLeague,
				"authorizeRecorder",
				"allow League to record season points into Score",
			)...)
			return actions
		},
	})

	r.add(&spec{
		contractType: contracts.TypeMatch,
		dependsOn:    []contracts.ContractType{contracts.TypeScore, contracts.TypeEventBus},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			score, err := dependencyAddress(addresses, contracts.TypeScore)
			if err != nil {
				return nil, err
			}
			bus, err := dependencyAddress(addresses, contracts.TypeEventBus)
			if err != nil {
				return nil, err
			}
			return []any{score, bus}, nil
		},
		permissions: func(pctx PermissionContext) []PermissionAction {
			var actions []PermissionAction
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypeMatch, contracts.TypeTournament,
				"authorizeManager",
				"allow Tournament to create and finalize bracket matches",
			)...)
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypeMatch, contracts.TypePrediction,
				"authorizeManager",
				"allow Prediction to observe match finalization",
			)...)
			return actions
		},
	})

	r.add(&spec{
		contractType: contracts.TypePrize,
		dependsOn:    []contracts.ContractType{contracts.TypeMatch},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			match, err := dependencyAddress(addresses, contracts.TypeMatch)
			if err != nil {
				return nil, err
			}
			return []any{match}, nil
		},
		permissions: func(pctx PermissionContext) []PermissionAction {
			var actions []PermissionAction
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypePrize, contracts.TypeMatch,
				"authorizeDistributor",
				"allow Match to open prize pools on finalization",
			)...)
			actions = append(actions, grantWhenWired(pctx,
				contracts.TypePrize, contracts.TypePrediction,
				"authorizeDistributor",
				"allow Prediction to pay out settled bets from pools",
			)...)
			return actions
		},
	})

	r.add(&spec{
		contractType: contracts.TypeTournament,
		dependsOn:    []contracts.ContractType{contracts.TypeMatch, contracts.TypeHeap},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			match, err := dependencyAddress(addresses, contracts.TypeMatch)
			if err != nil {
				return nil, err
			}
			heap, err := dependencyAddress(addresses, contracts.TypeHeap)
			if err != nil {
				return nil, err
			}
			return []any{match, heap}, nil
		},
		permissions: func(pctx PermissionContext) []PermissionAction {
			return grantWhenWired(pctx,
				contracts.TypeTournament, contracts.TypeLeague,
				"authorizeScheduler",
				"allow League to schedule season tournaments",
			)
		},
	})

	r.add(&spec{
		contractType: contracts.TypeLeague,
		dependsOn:    []contracts.ContractType{contracts.TypeTournament, contracts.TypeScore},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			tournament, err := dependencyAddress(addresses, contracts.TypeTournament)
			if err != nil {
				return nil, err
			}
			score, err := dependencyAddress(addresses, contracts.TypeScore)
			if err != nil {
				return nil, err
			}
			return []any{tournament, score}, nil
		},
	})

	r.add(&spec{
		contractType: contracts.TypePrediction,
		dependsOn:    []contracts.ContractType{contracts.TypeMatch, contracts.TypePrize},
		buildArgs: func(addresses map[contracts.ContractType]common.Address) ([]any, error) {
			match, err := dependencyAddress(addresses, contracts.TypeMatch)
			if err != nil {
				return nil, err
			}
			prize, err := dependencyAddress(addresses, contracts.TypePrize)
			if err != nil {
				return nil, err
			}
			return []any{match, prize}, nil
		},
	})

	return r
}

func (r *Registry) add(s Spec) {
	r.order = append(r.order, s.Type())
	r.specs[s.Type()] = s
}

// Get returns the spec for a contract type.
func (r *Registry) Get(t contracts.ContractType) (Spec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// All returns every spec in insertion order.
func (r *Registry) All() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, t := range r.order {
		specs = append(specs, r.specs[t])
	}
	return specs
}
