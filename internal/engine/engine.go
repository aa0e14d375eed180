// Package engine runs the full label derivation over a transaction
// snapshot: transfer-pair tagging, daily balance reconstruction,
// recurring-payment classification and swap-frequency scoring.
//
// Entities are independent by construction, so the engine fans out one
// task per user (and per account for balances) with no shared mutable
// state. Results are merged in sorted entity order; outcomes never depend
// on scheduling.
package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"txn-insights/internal/balances"
	"txn-insights/internal/domain"
	"txn-insights/internal/logger"
	"txn-insights/internal/recurring"
	"txn-insights/internal/sequence"
	"txn-insights/internal/swaps"
	"txn-insights/internal/transfers"
)

// Failure records one entity that could not be processed. Failures never
// abort the batch.
type Failure struct {
	Entity string
	Op     string
	Err    error
}

// Result is the derived output for one engine run.
type Result struct {
	// Transactions is the input record set with derived fields filled.
	Transactions []domain.Transaction

	// Balances holds the reconstructed daily series per account.
	Balances map[string][]domain.DailyBalance

	// MobileModes and CarInsuranceModes hold the per-user payment-mode
	// classifications.
	MobileModes       map[string]domain.PaymentMode
	CarInsuranceModes map[string]domain.PaymentMode

	// SwapClasses holds per-user swap-frequency classes. Users without
	// relevant history are absent, not defaulted.
	SwapClasses map[string]domain.SwapClass

	// Failures lists entities skipped with their reasons.
	Failures []Failure
}

// Derive runs every derivation over the given snapshot of transactions
// and account observations. The input slices are not modified.
func Derive(ctx context.Context, txns []domain.Transaction, snaps []domain.AccountSnapshot, cfg Config) (*Result, error) {
	log := logger.FromContext(ctx)

	balanceCfg, err := cfg.balance()
	if err != nil {
		return nil, err
	}
	pairingCfg := cfg.pairing()
	variants := cfg.variants()
	swapCfg := cfg.swap()

	byUser, err := sequence.GroupBy(txns, sequence.KeyUser)
	if err != nil {
		return nil, err
	}
	users := sequence.Entities(byUser)

	type userOut struct {
		pairs       []transfers.Pair
		modes       []domain.PaymentMode
		swapClass   domain.SwapClass
		hasSwap     bool
		swapSkipped bool
	}
	userOuts := make([]userOut, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, user := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs := byUser[user].Records
			out := &userOuts[i]
			out.pairs = transfers.MatchPairs(recs, pairingCfg)
			out.modes = make([]domain.PaymentMode, len(variants))
			for vi, v := range variants {
				out.modes[vi] = recurring.Classify(recs, v)
			}
			class, err := swaps.Score(recs, swapCfg)
			switch {
			case errors.Is(err, swaps.ErrInsufficientHistory):
				out.swapSkipped = true
			case err != nil:
				return err
			default:
				out.swapClass = class
				out.hasSwap = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Balances:          make(map[string][]domain.DailyBalance),
		MobileModes:       make(map[string]domain.PaymentMode, len(users)),
		CarInsuranceModes: make(map[string]domain.PaymentMode, len(users)),
		SwapClasses:       make(map[string]domain.SwapClass),
	}

	var allPairs []transfers.Pair
	for i, user := range users {
		out := userOuts[i]
		allPairs = append(allPairs, out.pairs...)
		res.MobileModes[user] = out.modes[0]
		res.CarInsuranceModes[user] = out.modes[1]
		if out.hasSwap {
			res.SwapClasses[user] = out.swapClass
		}
	}
	res.Transactions = transfers.Apply(txns, allPairs, transfers.MatchDescriptions(txns))

	// Balances run per account; a missing anchor skips the account and
	// is reported, never coerced to zero.
	byAccount, err := sequence.GroupBy(txns, sequence.KeyAccount)
	if err != nil {
		return nil, err
	}
	snapByAccount := make(map[string]domain.AccountSnapshot, len(snaps))
	for _, s := range snaps {
		snapByAccount[s.AccountID] = s
	}

	type accountOut struct {
		series []domain.DailyBalance
		fail   *Failure
	}
	accounts := sequence.Entities(byAccount)
	accountOuts := make([]accountOut, len(accounts))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, account := range accounts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := &accountOuts[i]
			snap, ok := snapByAccount[account]
			if !ok {
				snap = domain.AccountSnapshot{AccountID: account}
			}
			series, err := balances.Reconstruct(byAccount[account].Records, snap, balanceCfg)
			if err != nil {
				out.fail = &Failure{Entity: account, Op: "reconstruct_balances", Err: err}
				return nil
			}
			out.series = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, account := range accounts {
		out := accountOuts[i]
		if out.fail != nil {
			res.Failures = append(res.Failures, *out.fail)
			continue
		}
		res.Balances[account] = out.series
	}

	log.Info().
		Int("users", len(users)).
		Int("accounts", len(accounts)).
		Int("transactions", len(txns)).
		Int("transfer_pairs", len(allPairs)).
		Int("balance_series", len(res.Balances)).
		Int("swap_classified", len(res.SwapClasses)).
		Int("failures", len(res.Failures)).
		Msg("derivation complete")

	return res, nil
}
