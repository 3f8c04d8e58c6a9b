package requirements

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arenaworks/arenakit/internal/contracts"
	"gopkg.in/yaml.v3"
)

const fileName = "requirements.yaml"

type (
	// Source reads the persisted list of contract types an application wants
	// deployed per chain. A missing file or an empty list makes the
	// orchestrator a trivial success.
	Source struct {
		path string
	}

	// file maps decimal chain ids to the contract types required there.
	file struct {
		Chains map[string][]contracts.ContractType `yaml:"chains"`
	}
)

// NewSource creates a requirements source stored under dataDir.
func NewSource(dataDir string) *Source {
	return &Source{path: filepath.Join(dataDir, fileName)}
}

// Required returns the contract types required on a chain, in file order.
// Unknown type names are rejected so typos fail loudly rather than being
// silently skipped.
func (s *Source) Required(chainID uint64) ([]contracts.ContractType, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse requirements file: %w", err)
	}

	required := f.Chains[strconv.FormatUint(chainID, 10)]
	for _, t := range required {
		if !contracts.Known(t) {
			return nil, fmt.Errorf("unknown contract type %q in requirements file", t)
		}
	}

	return required, nil
}

// Write persists the required contract types for a chain, replacing any
// previous entry for that chain and leaving others untouched.
func (s *Source) Write(chainID uint64, required []contracts.ContractType) error {
	var f file

	if data, err := os.ReadFile(s.path); err == nil {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("failed to parse requirements file: %w", err)
		}
	}

	if f.Chains == nil {
		f.Chains = make(map[string][]contracts.ContractType)
	}
	f.Chains[strconv.FormatUint(chainID, 10)] = required

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write requirements file: %w", err)
	}

	return nil
}
