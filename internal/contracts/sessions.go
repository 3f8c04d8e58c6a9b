package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the subset of ethclient.Client the sessions need.
type Backend interface {
	bind.ContractCaller
	bind.ContractTransactor
	bind.ContractFilterer
}

// session wraps a deployed contract with one method call per contract
// function. All game sessions embed it.
type session struct {
	address  common.Address
	contract *bind.BoundContract
}

func newSession(address common.Address, contractABI CompiledContract, backend Backend) session {
	return session{
		address:  address,
		contract: bind.NewBoundContract(address, contractABI.ABI, backend, backend, backend),
	}
}

// Address returns the deployed contract address.
func (s session) Address() common.Address {
	return s.address
}

func (s session) call(opts *bind.CallOpts, results *[]any, method string, params ...any) error {
	if err := s.contract.Call(opts, results, method, params...); err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	return nil
}

func (s session) transact(opts *bind.TransactOpts, method string, params ...any) (*types.Transaction, error) {
	tx, err := s.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return tx, nil
}

type (
	EventBusSession   struct{ session }
	ScoreSession      struct{ session }
	MatchSession      struct{ session }
	PrizeSession      struct{ session }
	TournamentSession struct{ session }
	LeagueSession     struct{ session }
	PredictionSession struct{ session }
)

// NewEventBusSession binds a deployed EventBus contract.
func NewEventBusSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *EventBusSession {
	return &EventBusSession{newSession(address, artifacts[TypeEventBus], backend)}
}

func (s *EventBusSession) Publish(opts *bind.TransactOpts, topic [32]byte, payload []byte) (*types.Transaction, error) {
	return s.transact(opts, "publish", topic, payload)
}

func (s *EventBusSession) AuthorizePublisher(opts *bind.TransactOpts, publisher common.Address) (*types.Transaction, error) {
	return s.transact(opts, "authorizePublisher", publisher)
}

func (s *EventBusSession) IsPublisher(opts *bind.CallOpts, publisher common.Address) (bool, error) {
	var out []any
	if err := s.call(opts, &out, "isPublisher", publisher); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// NewScoreSession binds a deployed Score contract.
func NewScoreSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *ScoreSession {
	return &ScoreSession{newSession(address, artifacts[TypeScore], backend)}
}

func (s *ScoreSession) SubmitScore(opts *bind.TransactOpts, matchID *big.Int, player common.Address, score *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "submitScore", matchID, player, score)
}

func (s *ScoreSession) GetScore(opts *bind.CallOpts, matchID *big.Int, player common.Address) (*big.Int, error) {
	var out []any
	if err := s.call(opts, &out, "getScore", matchID, player); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (s *ScoreSession) AuthorizeRecorder(opts *bind.TransactOpts, recorder common.Address) (*types.Transaction, error) {
	return s.transact(opts, "authorizeRecorder", recorder)
}

// NewMatchSession binds a deployed Match contract.
func NewMatchSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *MatchSession {
	return &MatchSession{newSession(address, artifacts[TypeMatch], backend)}
}

func (s *MatchSession) CreateMatch(opts *bind.TransactOpts, players []common.Address, entryFee *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "createMatch", players, entryFee)
}

func (s *MatchSession) FinalizeMatch(opts *bind.TransactOpts, matchID *big.Int, winner common.Address) (*types.Transaction, error) {
	return s.transact(opts, "finalizeMatch", matchID, winner)
}

func (s *MatchSession) AuthorizeManager(opts *bind.TransactOpts, manager common.Address) (*types.Transaction, error) {
	return s.transact(opts, "authorizeManager", manager)
}

// NewPrizeSession binds a deployed Prize contract.
func NewPrizeSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *PrizeSession {
	return &PrizeSession{newSession(address, artifacts[TypePrize], backend)}
}

func (s *PrizeSession) CreatePool(opts *bind.TransactOpts, matchID *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "createPool", matchID)
}

func (s *PrizeSession) Claim(opts *bind.TransactOpts, matchID *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "claim", matchID)
}

func (s *PrizeSession) PoolBalance(opts *bind.CallOpts, matchID *big.Int) (*big.Int, error) {
	var out []any
	if err := s.call(opts, &out, "poolBalance", matchID); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// NewTournamentSession binds a deployed Tournament contract.
func NewTournamentSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *TournamentSession {
	return &TournamentSession{newSession(address, artifacts[TypeTournament], backend)}
}

func (s *TournamentSession) CreateTournament(opts *bind.TransactOpts, name string, maxPlayers *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "createTournament", name, maxPlayers)
}

func (s *TournamentSession) Register(opts *bind.TransactOpts, tournamentID *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "register", tournamentID)
}

// NewLeagueSession binds a deployed League contract.
func NewLeagueSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *LeagueSession {
	return &LeagueSession{newSession(address, artifacts[TypeLeague], backend)}
}

func (s *LeagueSession) CreateSeason(opts *bind.TransactOpts, name string, rounds *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "createSeason", name, rounds)
}

// NewPredictionSession binds a deployed Prediction contract.
func NewPredictionSession(address common.Address, artifacts map[ContractType]CompiledContract, backend Backend) *PredictionSession {
	return &PredictionSession{newSession(address, artifacts[TypePrediction], backend)}
}

func (s *PredictionSession) PlaceBet(opts *bind.TransactOpts, matchID *big.Int, outcome uint8) (*types.Transaction, error) {
	return s.transact(opts, "placeBet", matchID, outcome)
}

func (s *PredictionSession) Settle(opts *bind.TransactOpts, matchID *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "settle", matchID)
}
