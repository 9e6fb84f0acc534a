package syncgateway

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/utils"
)

const (
	probeAttempts = 3
	probeDelay    = 200 * time.Millisecond
)

// ConnectivityMonitor periodically probes the remote store and feeds the connection status of the gateway.
type ConnectivityMonitor struct {
	gateway  *Gateway
	remote   repositories.RemoteFormRepository
	interval time.Duration
	delay    time.Duration
}

func NewConnectivityMonitor(
	gateway *Gateway,
	remote repositories.RemoteFormRepository,
	interval time.Duration,
) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		gateway:  gateway,
		remote:   remote,
		interval: interval,
		delay:    probeDelay,
	}
}

// Run probes until the context is done. Without remote store the status is offline for good.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	if m.remote == nil {
		logger.InfoContext(ctx, "no remote store configured, the designer runs offline")
		m.gateway.SetConnectionStatus(ctx, models.ConnectionOffline)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "connectivity monitor stopped")
			return nil
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe pings the remote store, retrying transient failures, and returns the resulting status.
func (m *ConnectivityMonitor) Probe(ctx context.Context) models.ConnectionStatus {
	if m.remote == nil {
		m.gateway.SetConnectionStatus(ctx, models.ConnectionOffline)
		return models.ConnectionOffline
	}

	err := retry.Do(
		func() error {
			return m.remote.Ping(ctx)
		},
		retry.Attempts(probeAttempts),
		retry.LastErrorOnly(true),
		retry.Delay(m.delay),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, models.ErrRemoteRejected)
		}),
	)

	if ctx.Err() != nil {
		return m.gateway.Status()
	}

	status := models.ConnectionConnected
	switch {
	case err == nil:
	case errors.Is(err, models.ErrRemoteUnreachable), errors.Is(err, context.DeadlineExceeded):
		status = models.ConnectionDisconnected
	default:
		status = models.ConnectionError
	}
	if err != nil {
		utils.LoggerFromContext(ctx).DebugContext(ctx, "remote store probe failed", "error", err.Error())
	}

	m.gateway.SetConnectionStatus(ctx, status)
	return status
}
