package contracts

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers every eth_call with a canned return value.
type fakeBackend struct {
	callReturn []byte
	lastCall   ethereum.CallMsg
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.lastCall = call
	return b.callReturn, nil
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(1)}, nil
}

func (b *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}

func (b *fakeBackend) SendTransaction(context.Context, *types.Transaction) error {
	return nil
}

func (b *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return event.NewSubscription(func(<-chan struct{}) error { return nil }), nil
}

func word(value *big.Int) []byte {
	out := make([]byte, 32)
	return value.FillBytes(out)
}

func TestScoreSessionGetScore(t *testing.T) {
	artifacts, err := LoadCompiledContracts()
	require.NoError(t, err)

	backend := &fakeBackend{callReturn: word(big.NewInt(1337))}
	scoreAddr := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	session := NewScoreSession(scoreAddr, artifacts, backend)

	score, err := session.GetScore(nil, big.NewInt(7), common.HexToAddress("0x00000000000000000000000000000000000000bb"))
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(1337), score)
	require.NotNil(t, backend.lastCall.To)
	assert.Equal(t, scoreAddr, *backend.lastCall.To)
}

func TestPrizeSessionPoolBalance(t *testing.T) {
	artifacts, err := LoadCompiledContracts()
	require.NoError(t, err)

	backend := &fakeBackend{callReturn: word(big.NewInt(2500))}
	session := NewPrizeSession(common.HexToAddress("0x00000000000000000000000000000000000000ff"), artifacts, backend)

	balance, err := session.PoolBalance(nil, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2500), balance)
}

func TestEventBusSessionIsPublisher(t *testing.T) {
	artifacts, err := LoadCompiledContracts()
	require.NoError(t, err)

	backend := &fakeBackend{callReturn: word(big.NewInt(1))}
	session := NewEventBusSession(common.HexToAddress("0x00000000000000000000000000000000000000cc"), artifacts, backend)

	ok, err := session.IsPublisher(nil, common.HexToAddress("0x00000000000000000000000000000000000000dd"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionAddress(t *testing.T) {
	artifacts, err := LoadCompiledContracts()
	require.NoError(t, err)

	addr := common.HexToAddress("0x00000000000000000000000000000000000000ee")
	session := NewPrizeSession(addr, artifacts, &fakeBackend{})
	assert.Equal(t, addr, session.Address())
}
