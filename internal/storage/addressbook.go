package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

const (
	addressBookFileName = "addresses.json"

	// DefaultContext is the deployment context used when the caller does not
	// namespace its contracts.
	DefaultContext = "default"
)

type (
	// AddressBook persists deployed contract addresses as a JSON file under
	// the data directory, keyed chain id -> context -> contract type.
	// On-chain state remains the source of truth; the book is a cache that
	// the deploy collaborators write through after each deployment.
	AddressBook struct {
		path   string
		mu     sync.Mutex
		logger *slog.Logger
	}

	// bookFile is the on-disk shape. Chain ids are decimal strings because
	// JSON object keys must be strings.
	bookFile map[string]map[string]map[contracts.ContractType]string
)

// NewAddressBook creates an address book stored under dataDir.
func NewAddressBook(dataDir string) *AddressBook {
	return &AddressBook{
		path:   filepath.Join(dataDir, addressBookFileName),
		logger: logger.Named("address_book"),
	}
}

// Get returns every stored address for a chain, keyed by context and
// contract type. A missing file yields an empty map, not an error.
func (b *AddressBook) Get(chainID uint64) (map[string]map[contracts.ContractType]common.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.load()
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[contracts.ContractType]common.Address)
	for context, entries := range file[chainKey(chainID)] {
		result[context] = make(map[contracts.ContractType]common.Address, len(entries))
		for contractType, addr := range entries {
			result[context][contractType] = common.HexToAddress(addr)
		}
	}

	return result, nil
}

// Put records one deployed address and writes the book back to disk.
func (b *AddressBook) Put(chainID uint64, context string, contractType contracts.ContractType, address common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.load()
	if err != nil {
		b.logger.With("err", err.Error()).Warn("address book unreadable, rewriting from scratch")
		file = bookFile{}
	}

	key := chainKey(chainID)
	if file[key] == nil {
		file[key] = make(map[string]map[contracts.ContractType]string)
	}
	if file[key][context] == nil {
		file[key][context] = make(map[contracts.ContractType]string)
	}
	file[key][context][contractType] = address.Hex()

	return b.save(file)
}

// Remove deletes a stored address, if present.
func (b *AddressBook) Remove(chainID uint64, context string, contractType contracts.ContractType) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.load()
	if err != nil {
		return err
	}

	if entries, ok := file[chainKey(chainID)][context]; ok {
		delete(entries, contractType)
	}

	return b.save(file)
}

func (b *AddressBook) load() (bookFile, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return bookFile{}, nil
		}
		return nil, fmt.Errorf("failed to read address book: %w", err)
	}

	var file bookFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse address book: %w", err)
	}

	return file, nil
}

func (b *AddressBook) save(file bookFile) error {
	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal address book: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(b.path, append(content, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write address book: %w", err)
	}

	return nil
}

func chainKey(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}
