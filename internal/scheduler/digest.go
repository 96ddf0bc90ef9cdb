package scheduler

import (
	"context"
	"fmt"
	"time"

	"cryptodash/internal/render"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportSender delivers a rendered digest to a recipient.
type ReportSender interface {
	SendReport(ctx context.Context, subject, body, recipient string) error
}

// Digest emails the latest cycle's rendered snapshot on a cron
// schedule. It reads whatever the runner last published; if no cycle
// has succeeded yet the tick is skipped.
type Digest struct {
	cron      *cron.Cron
	runner    *Runner
	sender    ReportSender
	recipient string
	log       *zap.Logger
}

// NewDigest creates a Digest bound to a runner and mail sender.
func NewDigest(runner *Runner, sender ReportSender, recipient string, log *zap.Logger) *Digest {
	return &Digest{
		cron:      cron.New(cron.WithSeconds()),
		runner:    runner,
		sender:    sender,
		recipient: recipient,
		log:       log,
	}
}

// Register schedules the digest with a cron expression (with seconds).
func (d *Digest) Register(spec string) error {
	if _, err := d.cron.AddFunc(spec, d.send); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (d *Digest) Start() {
	d.cron.Start()
	d.log.Info("digest scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (d *Digest) Stop() {
	d.cron.Stop()
	d.log.Info("digest scheduler stopped")
}

func (d *Digest) send() {
	snap, series := d.runner.Latest()
	if snap == nil || series == nil {
		d.log.Warn("digest skipped, no successful cycle yet")
		return
	}
	subject := fmt.Sprintf("Market Digest - %s - %s", snap.Symbol, time.Now().Format("2006-01-02"))
	body := render.FormatSnapshot(snap) + "\n" + render.FormatSeriesTail(series, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.sender.SendReport(ctx, subject, body, d.recipient); err != nil {
		d.log.Error("send digest", zap.Error(err))
		return
	}
	d.log.Info("digest sent", zap.String("recipient", d.recipient))
}
