package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"miningauto/apps/miner/internal/model"
)

// CSVReporter accumulates portfolio samples over a session and writes a
// per-run CSV report when the session completes.
type CSVReporter struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	samples []model.PortfolioSample
	path    string
}

// NewCSVReporter creates a new CSV reporter writing into dir
func NewCSVReporter(dir string, logger *zap.Logger) *CSVReporter {
	return &CSVReporter{dir: dir, logger: logger}
}

// SessionStarted resets the reporter for a new session
func (r *CSVReporter) SessionStarted(_ context.Context, _ model.MiningSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
	r.path = ""
	return nil
}

// SampleRecorded buffers a sample for the report
func (r *CSVReporter) SampleRecorded(_ context.Context, sample model.PortfolioSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
	return nil
}

// SessionCompleted writes the report. Sessions without a single
// successful sample produce no file.
func (r *CSVReporter) SessionCompleted(_ context.Context, session model.MiningSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		r.logger.Info("No balance samples recorded, skipping CSV report",
			zap.String("session_id", session.SessionID))
		return nil
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(r.dir, fmt.Sprintf("portfolio_report_%s.csv", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"timestamp_utc", "wallet", "eth_balance", "eth_usd", "xyo_balance", "xyo_usd", "total_usd",
	}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, sample := range r.samples {
		record := []string{
			sample.SampledAt.Format("2006-01-02 15:04:05"),
			sample.WalletAddress,
			fmt.Sprintf("%.10f", sample.ETHBalance),
			fmt.Sprintf("%.2f", sample.ETHUSD),
			fmt.Sprintf("%.10f", sample.XYOBalance),
			fmt.Sprintf("%.2f", sample.XYOUSD),
			fmt.Sprintf("%.2f", sample.TotalUSD),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	r.path = path
	r.logger.Info("Wrote CSV portfolio report",
		zap.String("path", path),
		zap.Int("samples", len(r.samples)),
		zap.String("session_id", session.SessionID))
	return nil
}

// Path returns the path of the last written report, if any
func (r *CSVReporter) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}
