package session

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"miningauto/apps/miner/internal/assets"
	"miningauto/apps/miner/internal/config"
	"miningauto/apps/miner/internal/etherscan"
	"miningauto/apps/miner/internal/model"
)

// Session states
const (
	StateValidating = "validating"
	StateLooping    = "looping"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// BalanceSource provides read-only wallet balances
type BalanceSource interface {
	ETHBalance(ctx context.Context, walletAddress string) (*big.Int, error)
	TokenBalance(ctx context.Context, contractAddress, walletAddress string) (*big.Int, error)
}

// PriceSource provides USD prices by CoinGecko coin id
type PriceSource interface {
	USDPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// Sink receives session lifecycle notifications. Sink errors are logged
// and never stop the mining loop.
type Sink interface {
	SessionStarted(ctx context.Context, session model.MiningSession) error
	SampleRecorded(ctx context.Context, sample model.PortfolioSample) error
	SessionCompleted(ctx context.Context, session model.MiningSession) error
}

// Snapshot is a point-in-time view of a running session
type Snapshot struct {
	SessionID        string   `json:"session_id"`
	State            string   `json:"state"`
	WalletAddress    string   `json:"wallet_address"`
	Iteration        int      `json:"iteration"`
	ElapsedSeconds   float64  `json:"elapsed_seconds"`
	RemainingSeconds float64  `json:"remaining_seconds"`
	ProgressPercent  float64  `json:"progress_percent"`
	TotalUSD         *float64 `json:"total_usd,omitempty"`
}

// Runner drives a timed mining/portfolio monitoring session. Each
// iteration fetches wallet balances, values them in USD and reports
// progress; balance-check failures are logged and the loop continues.
type Runner struct {
	cfg      *config.Config
	balances BalanceSource
	prices   PriceSource
	sinks    []Sink
	out      io.Writer
	cadence  time.Duration
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRunner creates a new session runner
func NewRunner(
	cfg *config.Config,
	balances BalanceSource,
	prices PriceSource,
	sinks []Sink,
	out io.Writer,
	cadence time.Duration,
	logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		balances: balances,
		prices:   prices,
		sinks:    sinks,
		out:      out,
		cadence:  cadence,
		logger:   logger,
		snapshot: Snapshot{
			State:         StateValidating,
			WalletAddress: cfg.WalletAddress,
		},
	}
}

// Snapshot returns a point-in-time view of the session
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Runner) updateSnapshot(update func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(&r.snapshot)
}

// Run executes the mining loop until the duration budget is exhausted or
// the context is cancelled. The returned session is populated either way.
func (r *Runner) Run(ctx context.Context, duration time.Duration) (*model.MiningSession, error) {
	eth, _ := assets.GlobalRegistry.GetBySymbol("ETH")
	xyo, _ := assets.GlobalRegistry.GetBySymbol("XYO")

	session := model.MiningSession{
		SessionID:       uuid.New().String(),
		WalletAddress:   r.cfg.WalletAddress,
		DurationMinutes: duration.Minutes(),
		CadenceSeconds:  r.cadence.Seconds(),
		Status:          "running",
		StartedAt:       time.Now(),
	}

	r.printBanner(duration, session.StartedAt)

	// Prices are fetched once at session start. A price failure must not
	// stop the loop, so the session degrades to balances-only reporting.
	havePrices := true
	usdPrices, err := r.prices.USDPrices(ctx, []string{eth.CoinGeckoID, xyo.CoinGeckoID})
	if err != nil {
		havePrices = false
		r.logger.Warn("Failed to fetch USD prices, continuing without valuation", zap.Error(err))
		fmt.Fprintln(r.out, "  Price lookup failed; reporting raw balances only")
	} else {
		fmt.Fprintf(r.out, "  ETH price: $%.4f\n", usdPrices[eth.CoinGeckoID])
		fmt.Fprintf(r.out, "  XYO price: $%.8f\n", usdPrices[xyo.CoinGeckoID])
	}
	fmt.Fprintln(r.out, "")

	r.updateSnapshot(func(s *Snapshot) {
		s.SessionID = session.SessionID
		s.State = StateLooping
	})
	r.notifyStarted(ctx, session)

	start := time.Now()
	end := start.Add(duration)
	iteration := 0
	var lastSample *model.PortfolioSample

	for time.Now().Before(end) {
		iteration++
		now := time.Now()

		fmt.Fprintf(r.out, "[%s] Mining iteration %d\n", now.Format("15:04:05"), iteration)
		fmt.Fprintln(r.out, "  Checking wallet balances via Etherscan...")
		r.logger.Info("Mining iteration",
			zap.Int("iteration", iteration),
			zap.String("session_id", session.SessionID))

		sample, err := r.collectSample(ctx, session.SessionID, iteration, now, usdPrices, havePrices)
		if err != nil {
			// Balance checks are observational; the loop keeps its cadence.
			r.logger.Warn("Balance check failed, continuing", zap.Int("iteration", iteration), zap.Error(err))
			fmt.Fprintf(r.out, "  Balance check failed: %v\n", err)
		} else {
			lastSample = sample
			fmt.Fprintf(r.out, "  ETH: %.6f (~$%.2f)\n", sample.ETHBalance, sample.ETHUSD)
			fmt.Fprintf(r.out, "  XYO: %.0f (~$%.2f)\n", sample.XYOBalance, sample.XYOUSD)
			if havePrices {
				fmt.Fprintf(r.out, "  Total portfolio (ETH + XYO): $%.2f\n", sample.TotalUSD)
			}
			r.notifySample(ctx, *sample)
		}

		elapsed := time.Since(start)
		remaining := end.Sub(time.Now())
		progress := elapsed.Seconds() / duration.Seconds() * 100
		if progress > 100 {
			progress = 100
		}
		fmt.Fprintf(r.out, "  Progress: %.1f%% | Elapsed: %.1fs | Remaining: %.1fs\n",
			progress, elapsed.Seconds(), maxFloat(remaining.Seconds(), 0))

		r.updateSnapshot(func(s *Snapshot) {
			s.Iteration = iteration
			s.ElapsedSeconds = elapsed.Seconds()
			s.RemainingSeconds = maxFloat(remaining.Seconds(), 0)
			s.ProgressPercent = progress
			if lastSample != nil && havePrices {
				total := lastSample.TotalUSD
				s.TotalUSD = &total
			}
		})

		if remaining <= 0 {
			break
		}
		sleep := r.cadence
		if remaining < sleep {
			sleep = remaining
		}

		select {
		case <-ctx.Done():
			session.Status = "aborted"
			session.TotalIterations = iteration
			session.TotalSeconds = time.Since(start).Seconds()
			r.updateSnapshot(func(s *Snapshot) { s.State = StateFailed })
			return &session, fmt.Errorf("mining session interrupted: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}

	completedAt := time.Now()
	session.Status = "completed"
	session.CompletedAt = &completedAt
	session.TotalIterations = iteration
	session.TotalSeconds = completedAt.Sub(start).Seconds()
	if lastSample != nil && havePrices {
		total := lastSample.TotalUSD
		session.FinalTotalUSD = &total
	}

	r.updateSnapshot(func(s *Snapshot) { s.State = StateCompleted })
	r.printSummary(session, havePrices)
	r.notifyCompleted(ctx, session)

	return &session, nil
}

func (r *Runner) collectSample(
	ctx context.Context,
	sessionID string,
	iteration int,
	sampledAt time.Time,
	usdPrices map[string]float64,
	havePrices bool) (*model.PortfolioSample, error) {
	eth, _ := assets.GlobalRegistry.GetBySymbol("ETH")
	xyo, _ := assets.GlobalRegistry.GetBySymbol("XYO")

	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	ethWei, err := r.balances.ETHBalance(callCtx, r.cfg.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get ETH balance: %w", err)
	}

	xyoRaw, err := r.balances.TokenBalance(callCtx, assets.XYOContractAddress, r.cfg.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get XYO balance: %w", err)
	}

	sample := model.PortfolioSample{
		SessionID:     sessionID,
		Iteration:     iteration,
		SampledAt:     sampledAt.UTC(),
		WalletAddress: r.cfg.WalletAddress,
		ETHBalance:    etherscan.ToFloat(ethWei, eth.Decimals),
		XYOBalance:    etherscan.ToFloat(xyoRaw, xyo.Decimals),
	}
	if havePrices {
		sample.ETHUSD = sample.ETHBalance * usdPrices[eth.CoinGeckoID]
		sample.XYOUSD = sample.XYOBalance * usdPrices[xyo.CoinGeckoID]
		sample.TotalUSD = sample.ETHUSD + sample.XYOUSD
	}

	return &sample, nil
}

func (r *Runner) printBanner(duration time.Duration, startedAt time.Time) {
	fmt.Fprintln(r.out, "XYO Mining & Portfolio Automation")
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Configuration:")
	fmt.Fprintf(r.out, "  Wallet: %s\n", maskWallet(r.cfg.WalletAddress))
	fmt.Fprintf(r.out, "  Duration: %.0f minute(s)\n", duration.Minutes())
	fmt.Fprintf(r.out, "  Cadence: %.0fs per iteration\n", r.cadence.Seconds())
	fmt.Fprintf(r.out, "  Start time: %s\n", startedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "  Target liquidation: $%.2f\n", r.cfg.LiquidationTargetUSD)
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Fetching USD prices from CoinGecko...")
}

func (r *Runner) printSummary(session model.MiningSession, havePrices bool) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Mining session complete")
	fmt.Fprintf(r.out, "  Total iterations: %d\n", session.TotalIterations)
	fmt.Fprintf(r.out, "  Total time: %.1fs (%.2f minutes)\n", session.TotalSeconds, session.TotalSeconds/60)

	if !havePrices {
		fmt.Fprintln(r.out, "  USD prices were unavailable; no liquidation summary")
		return
	}
	if session.FinalTotalUSD == nil {
		fmt.Fprintln(r.out, "  No successful balance samples recorded")
		return
	}

	total := *session.FinalTotalUSD
	fmt.Fprintf(r.out, "  Final portfolio (ETH + XYO): $%.2f\n", total)
	fmt.Fprintf(r.out, "  Target liquidation: $%.2f\n", r.cfg.LiquidationTargetUSD)
	gap := total - r.cfg.LiquidationTargetUSD
	if gap >= 0 {
		fmt.Fprintf(r.out, "  Above target by $%.2f\n", gap)
	} else {
		fmt.Fprintf(r.out, "  Below target by $%.2f\n", -gap)
	}
}

func (r *Runner) notifyStarted(ctx context.Context, session model.MiningSession) {
	for _, sink := range r.sinks {
		if err := sink.SessionStarted(ctx, session); err != nil {
			r.logger.Error("Sink failed on session start", zap.Error(err))
		}
	}
}

func (r *Runner) notifySample(ctx context.Context, sample model.PortfolioSample) {
	for _, sink := range r.sinks {
		if err := sink.SampleRecorded(ctx, sample); err != nil {
			r.logger.Error("Sink failed on sample", zap.Int("iteration", sample.Iteration), zap.Error(err))
		}
	}
}

func (r *Runner) notifyCompleted(ctx context.Context, session model.MiningSession) {
	for _, sink := range r.sinks {
		if err := sink.SessionCompleted(ctx, session); err != nil {
			r.logger.Error("Sink failed on session completion", zap.Error(err))
		}
	}
}

// maskWallet keeps the wallet readable in output without printing it in full
func maskWallet(address string) string {
	if len(address) < 18 {
		return address
	}
	return address[:10] + "..." + address[len(address)-8:]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
