// internal/services/sweeper_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/qooqz/auction-backend/internal/config"
)

func TestSweeperRunDisabledWithZeroInterval(t *testing.T) {
	cfg := &config.Config{
		Auction: config.AuctionConfig{SweepIntervalSeconds: 0},
	}
	sweeper := NewSweeperService(nil, nil, cfg)

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled sweeper")
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		Auction: config.AuctionConfig{SweepIntervalSeconds: 3600},
	}
	sweeper := NewSweeperService(nil, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
