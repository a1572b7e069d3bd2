// Package cmd builds the clobd root command, a local simulator that
// drives the engine over an in-memory backend for manual testing —
// the teacher ships a full node binary (cmd/perpdexd) and a REST
// gateway (cmd/api); this is neither, just the engine's own test
// harness given a command line.
package cmd

import (
	"encoding/hex"
	"fmt"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/keeper"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// NewRootCmd builds the clobd command tree. Every run starts cold — a
// fresh InMemoryBackend, a fresh Keeper — since the engine itself never
// persists state across invocations (spec.md's independent-crash-
// recovery Non-goal rules out a resumable simulator).
func NewRootCmd() *cobra.Command {
	var baseHex, quoteHex, marketHex string
	var takerFeeBps, makerFeeBps uint16

	root := &cobra.Command{
		Use:   "clobd",
		Short: "clobd drives the bitmap-indexed order book engine from a script",
		Long: `clobd is a local simulator for the slot-efficient CLOB engine.
It holds no state between invocations: each run builds a fresh in-memory
backend, replays a script of deposit/place/cancel/match/dump commands
against it, and prints each step's result.`,
	}
	root.PersistentFlags().StringVar(&baseHex, "base", "0000000000000000000000000000000000000001", "base token address, hex")
	root.PersistentFlags().StringVar(&quoteHex, "quote", "0000000000000000000000000000000000000002", "quote token address, hex")
	root.PersistentFlags().StringVar(&marketHex, "market", "0000000000000000000000000000000000000003", "market address, hex")
	root.PersistentFlags().Uint16Var(&takerFeeBps, "taker-fee-bps", 30, "taker fee, basis points")
	root.PersistentFlags().Uint16Var(&makerFeeBps, "maker-fee-bps", 10, "maker fee, basis points")

	newSession := func() (*session, error) {
		base, err := parseAddr(baseHex)
		if err != nil {
			return nil, fmt.Errorf("--base: %w", err)
		}
		quote, err := parseAddr(quoteHex)
		if err != nil {
			return nil, fmt.Errorf("--quote: %w", err)
		}
		market, err := parseAddr(marketHex)
		if err != nil {
			return nil, fmt.Errorf("--market: %w", err)
		}
		backend := slotstore.NewInMemoryBackend()
		logger := log.NewLogger(root.OutOrStdout())
		cfg := keeper.DefaultConfig()
		k := keeper.NewKeeper(backend, logger, cfg, base, quote, market)
		seedMarket(backend, takerFeeBps, makerFeeBps)
		return &session{keeper: k, base: base, quote: quote}, nil
	}

	root.AddCommand(newRunCmd(newSession))
	root.AddCommand(VersionCmd())
	return root
}

// session bundles the keeper a run invocation operates on with the
// base/quote addresses its script's "deposit base"/"deposit quote"
// shorthand resolves against.
type session struct {
	keeper *keeper.Keeper
	base   [20]byte
	quote  [20]byte
}

// seedMarket writes the initial MarketState directly — no resting
// orders yet, both sides empty, fee rates taken from the command line.
func seedMarket(backend *slotstore.InMemoryBackend, takerFeeBps, makerFeeBps uint16) {
	m := types.MarketState{TakerFeeBps: takerFeeBps, MakerFeeBps: makerFeeBps}
	enc := m.Encode()
	backend.Sstore(types.MarketStateKey(), enc)
}

func parseAddr(s string) ([20]byte, error) {
	var out [20]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 20 {
		return out, fmt.Errorf("address must be 20 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// VersionCmd prints the simulator's version, matching the teacher's
// own minimal VersionCmd shape.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the clobd version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("clobd v0.1.0")
		},
	}
}
