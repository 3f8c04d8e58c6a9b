package contracts

import "github.com/ethereum/go-ethereum/accounts/abi"

type (
	// ContractType names one member of the closed set of game contracts the
	// SDK knows how to deploy and talk to.
	ContractType string

	// CompiledContract is a parsed build artifact: ABI plus creation bytecode.
	CompiledContract struct {
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}
)

const (
	TypeEventBus   ContractType = "EventBus"
	TypeHeap       ContractType = "Heap"
	TypeScore      ContractType = "Score"
	TypeMatch      ContractType = "Match"
	TypePrize      ContractType = "Prize"
	TypeTournament ContractType = "Tournament"
	TypeLeague     ContractType = "League"
	TypePrediction ContractType = "Prediction"
)

// All returns every known contract type in declaration order.
func All() []ContractType {
	return []ContractType{
		TypeEventBus,
		TypeHeap,
		TypeScore,
		TypeMatch,
		TypePrize,
		TypeTournament,
		TypeLeague,
		TypePrediction,
	}
}

// Known reports whether t is a member of the closed contract type set.
func Known(t ContractType) bool {
	for _, known := range All() {
		if t == known {
			return true
		}
	}
	return false
}
