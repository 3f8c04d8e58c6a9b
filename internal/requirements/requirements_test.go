package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredMissingFile(t *testing.T) {
	source := NewSource(t.TempDir())

	required, err := source.Required(31337)
	require.NoError(t, err)
	assert.Nil(t, required)
}

func TestWriteThenRequired(t *testing.T) {
	source := NewSource(t.TempDir())
	want := []contracts.ContractType{contracts.TypeEventBus, contracts.TypeScore, contracts.TypeMatch}

	require.NoError(t, source.Write(31337, want))

	required, err := source.Required(31337)
	require.NoError(t, err)
	assert.Equal(t, want, required)

	other, err := source.Required(1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestWritePreservesOtherChains(t *testing.T) {
	source := NewSource(t.TempDir())

	require.NoError(t, source.Write(1, []contracts.ContractType{contracts.TypeHeap}))
	require.NoError(t, source.Write(31337, []contracts.ContractType{contracts.TypeScore}))
	require.NoError(t, source.Write(1, []contracts.ContractType{contracts.TypePrize}))

	mainnet, err := source.Required(1)
	require.NoError(t, err)
	assert.Equal(t, []contracts.ContractType{contracts.TypePrize}, mainnet)

	local, err := source.Required(31337)
	require.NoError(t, err)
	assert.Equal(t, []contracts.ContractType{contracts.TypeScore}, local)
}

func TestRequiredRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	content := "chains:\n  \"31337\":\n    - Score\n    - Roulette\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.yaml"), []byte(content), 0644))

	_, err := NewSource(dir).Required(31337)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Roulette")
}

func TestRequiredMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.yaml"), []byte("chains: ["), 0644))

	_, err := NewSource(dir).Required(31337)
	require.Error(t, err)
}
