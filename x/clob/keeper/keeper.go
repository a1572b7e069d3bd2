package keeper

import (
	"cosmossdk.io/log"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Keeper wires the L0 storage collaborator, the scoped logger, and the
// per-market legs into an Engine, mirroring the teacher's
// Keeper{cdc, storeKey, perpetualKeeper, logger} construction shape
// (keeper.go NewKeeper) minus the proto codec this module has no use
// for — slots are packed by x/clob/types, not protobuf.
type Keeper struct {
	backend slotstore.Backend
	logger  log.Logger
	config  Config
	engine  *Engine
}

// NewKeeper constructs a Keeper for a single market, identified by its
// base/quote legs and a market token used to address its TraderState
// accounts (engine.go's keying convention).
func NewKeeper(backend slotstore.Backend, logger log.Logger, config Config, baseToken, quoteToken, marketToken [20]byte) *Keeper {
	scoped := logger.With("module", "x/clob")
	return &Keeper{
		backend: backend,
		logger:  scoped,
		config:  config,
		engine:  NewEngine(backend, scoped, config, baseToken, quoteToken, marketToken),
	}
}

// Logger returns the module-scoped logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// Engine returns the underlying Engine, the entry point dispatch calls
// into for every selector.
func (k *Keeper) Engine() *Engine {
	return k.engine
}

// Config returns the keeper's tunables (batch-size/match-depth bounds).
func (k *Keeper) Config() Config {
	return k.config
}

// MarketState returns the current per-market slot, decoded.
func (k *Keeper) MarketState() types.MarketState {
	return types.DecodeMarketState(k.backend.Sload(types.MarketStateKey()))
}

// TraderState returns the TraderState slot at (trader, token), decoded.
// Engine keeps each trader's account at the market token, so any other
// token (including the base or quote leg) reads back as zero.
func (k *Keeper) TraderState(trader, token [20]byte) types.TraderState {
	return types.DecodeTraderState(k.backend.Sload(types.TraderStateKey(trader, token)))
}
