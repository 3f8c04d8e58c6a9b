package storage

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Keystore reads and writes a single encrypted key file in the web3 secret
// storage format (scrypt + AES, via go-ethereum's keystore codec).
type Keystore struct {
	path    string
	scryptN int
	scryptP int
}

// NewKeystore creates a keystore backed by the given file path.
func NewKeystore(path string) *Keystore {
	return &Keystore{
		path:    path,
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
	}
}

// NewLightKeystore uses reduced scrypt parameters. Only suitable for tests
// and throwaway dev chains.
func NewLightKeystore(path string) *Keystore {
	return &Keystore{
		path:    path,
		scryptN: keystore.LightScryptN,
		scryptP: keystore.LightScryptP,
	}
}

// Create generates a fresh key, encrypts it with password, and writes the
// key file. Fails if the file already exists.
func (k *Keystore) Create(password string) (common.Address, error) {
	if _, err := os.Stat(k.path); err == nil {
		return common.Address{}, fmt.Errorf("keystore file already exists: %s", k.path)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to generate key: %w", err)
	}

	return k.write(privateKey, password)
}

// Import encrypts an existing private key into the key file.
func (k *Keystore) Import(privateKey *ecdsa.PrivateKey, password string) (common.Address, error) {
	return k.write(privateKey, password)
}

// Unlock decrypts the key file with password and returns the private key.
func (k *Keystore) Unlock(password string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore file: %w", err)
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore file: %w", err)
	}

	return key.PrivateKey, nil
}

// Address returns the address stored in the key file without decrypting the
// private key material.
func (k *Keystore) Address() (common.Address, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read keystore file: %w", err)
	}

	var keyJSON struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &keyJSON); err != nil {
		return common.Address{}, fmt.Errorf("failed to parse keystore file: %w", err)
	}

	return common.HexToAddress(keyJSON.Address), nil
}

func (k *Keystore) write(privateKey *ecdsa.PrivateKey, password string) (common.Address, error) {
	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		PrivateKey: privateKey,
	}

	encrypted, err := keystore.EncryptKey(key, password, k.scryptN, k.scryptP)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to encrypt key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return common.Address{}, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	if err := os.WriteFile(k.path, encrypted, 0600); err != nil {
		return common.Address{}, fmt.Errorf("failed to write keystore file: %w", err)
	}

	return key.Address, nil
}
