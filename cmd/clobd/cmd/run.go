package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// newRunCmd builds the "run" subcommand: replay a script of commands
// against one freshly-seeded session, one line per command.
//
// Script grammar, one command per line, blank lines and lines starting
// with '#' ignored:
//
//	deposit  <trader> <base|quote> <lots>
//	withdraw <trader> <base|quote> <lots>
//	place    <bid|ask> <tick> <trader> <qty> [postonly] [expire=<unix>]
//	limit    <bid|ask> <tick> <trader> <qty>
//	cancel   <bid|ask> <tick> <roi> <trader>
//	match    <bid|ask> <trader> <maxlots> [limittick]
//	dump
func newRunCmd(newSession func() (*session, error)) *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a script of engine commands against a fresh session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			var scanner *bufio.Scanner
			if scriptPath == "" || scriptPath == "-" {
				scanner = bufio.NewScanner(cmd.InOrStdin())
			} else {
				f, err := os.Open(scriptPath)
				if err != nil {
					return err
				}
				defer f.Close()
				scanner = bufio.NewScanner(f)
			}

			out := cmd.OutOrStdout()
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				fmt.Fprintf(out, "> %s\n", line)
				if err := runLine(sess, line, out); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a script file; defaults to stdin")
	return cmd
}

func runLine(sess *session, line string, out interface{ Write([]byte) (int, error) }) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	k := sess.keeper
	engine := k.Engine()

	switch fields[0] {
	case "deposit", "withdraw":
		if len(fields) != 4 {
			return fmt.Errorf("usage: %s <trader> <base|quote> <lots>", fields[0])
		}
		trader, err := parseAddr(fields[1])
		if err != nil {
			return err
		}
		token, err := sess.legToken(fields[2])
		if err != nil {
			return err
		}
		lots, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return err
		}
		if fields[0] == "deposit" {
			return engine.Deposit(trader, token, lots)
		}
		return engine.Withdraw(trader, token, lots)

	case "place":
		if len(fields) < 5 {
			return fmt.Errorf("usage: place <bid|ask> <tick> <trader> <qty> [postonly] [expire=<unix>]")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		tick, err := parseTick(fields[2])
		if err != nil {
			return err
		}
		trader, err := parseAddr(fields[3])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseUint(fields[4], 10, 64)
		if err != nil {
			return err
		}
		var postOnly bool
		var expiry uint64
		for _, flag := range fields[5:] {
			if flag == "postonly" {
				postOnly = true
				continue
			}
			if rest, ok := strings.CutPrefix(flag, "expire="); ok {
				expiry, err = strconv.ParseUint(rest, 10, 32)
				if err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("unrecognized place flag %q", flag)
		}
		roi, err := engine.PlaceAtTick(side, tick, trader, qty, postOnly, uint32(expiry))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "placed at roi=%d\n", roi)
		return nil

	case "limit":
		if len(fields) != 5 {
			return fmt.Errorf("usage: limit <bid|ask> <tick> <trader> <qty>")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		tick, err := parseTick(fields[2])
		if err != nil {
			return err
		}
		trader, err := parseAddr(fields[3])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseUint(fields[4], 10, 64)
		if err != nil {
			return err
		}
		result, err := engine.PlaceLimit(side, trader, tick, qty, uint32(time.Now().Unix()))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "filled=%d remain=%d taker_fee=%d\n", result.Fill.FilledBaseLots, result.RemainLots, result.TakerFee)
		return nil

	case "cancel":
		if len(fields) != 5 {
			return fmt.Errorf("usage: cancel <bid|ask> <tick> <roi> <trader>")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		tick, err := parseTick(fields[2])
		if err != nil {
			return err
		}
		roi, err := strconv.ParseUint(fields[3], 10, 8)
		if err != nil {
			return err
		}
		trader, err := parseAddr(fields[4])
		if err != nil {
			return err
		}
		id := types.OrderID{Side: side, Tick: tick, ROI: types.RestingOrderIndex(roi)}
		return engine.CancelOrder(side, id, trader, uint32(time.Now().Unix()))

	case "match":
		if len(fields) != 4 && len(fields) != 5 {
			return fmt.Errorf("usage: match <bid|ask> <trader> <maxlots> [limittick]")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		trader, err := parseAddr(fields[2])
		if err != nil {
			return err
		}
		maxLots, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return err
		}
		var limitTick *types.Tick
		if len(fields) == 5 {
			t, err := parseTick(fields[4])
			if err != nil {
				return err
			}
			limitTick = &t
		}
		result, err := engine.MatchOrder(side, trader, maxLots, limitTick, uint32(time.Now().Unix()))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "filled=%d taker_fee=%d maker_fees=%v\n", result.Fill.FilledBaseLots, result.TakerFee, result.MakerFees)
		return nil

	case "dump":
		market := k.MarketState()
		fmt.Fprintf(out, "market: bid=%v ask=%v outer_bid=%d outer_ask=%d fees_collected=%d\n",
			tickOrNone(market.BestTick(types.Bid)), tickOrNone(market.BestTick(types.Ask)),
			market.OuterCountBid, market.OuterCountAsk, market.CollectedFees)
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

// legToken resolves the script's "base"/"quote" shorthand to the
// addresses this session was seeded with.
func (s *session) legToken(leg string) ([20]byte, error) {
	switch leg {
	case "base":
		return s.base, nil
	case "quote":
		return s.quote, nil
	default:
		return [20]byte{}, fmt.Errorf("leg must be base or quote, got %q", leg)
	}
}

func parseSide(s string) (types.Side, error) {
	switch s {
	case "bid":
		return types.Bid, nil
	case "ask":
		return types.Ask, nil
	default:
		return 0, fmt.Errorf("side must be bid or ask, got %q", s)
	}
}

func parseTick(s string) (types.Tick, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	t := types.Tick(v)
	if !t.Valid() {
		return 0, fmt.Errorf("tick %d exceeds 21-bit range", v)
	}
	return t, nil
}

func tickOrNone(tick types.Tick, ok bool) string {
	if !ok {
		return "none"
	}
	return strconv.FormatUint(uint64(tick), 10)
}
