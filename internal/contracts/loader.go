package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed compiled/contracts.json
var compiledContractsFS embed.FS

// LoadCompiledContracts loads the embedded build artifacts for every known
// contract type.
func LoadCompiledContracts() (map[ContractType]CompiledContract, error) {
	data, err := compiledContractsFS.ReadFile("compiled/contracts.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded contracts: %w", err)
	}

	return parseContracts(data)
}

// parseContracts parses artifact JSON into a CompiledContract map.
func parseContracts(data []byte) (map[ContractType]CompiledContract, error) {
	var result map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	loaded := make(map[ContractType]CompiledContract)

	for name, contract := range result {
		if !Known(ContractType(name)) {
			continue
		}

		parsedABI, err := abi.JSON(strings.NewReader(string(contract.ABI)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
		}

		bytecodeHex := strings.TrimPrefix(contract.Bytecode, "0x")
		loaded[ContractType(name)] = CompiledContract{
			ABI:      parsedABI,
			RawABI:   string(contract.ABI),
			Bytecode: common.Hex2Bytes(bytecodeHex),
		}
	}

	for _, t := range All() {
		if _, ok := loaded[t]; !ok {
			return nil, fmt.Errorf("compiled artifact missing for contract type %s", t)
		}
	}

	return loaded, nil
}
