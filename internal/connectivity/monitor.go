package connectivity

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/moodlit/internal/logger"
)

// errReachable stops the probe group as soon as one host answers.
var errReachable = errors.New("reachable")

// DialFunc opens a connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Monitor decides the online state by dialing a set of host:port probes and
// pushes the result into a Gate.
type Monitor struct {
	gate    *Gate
	hosts   []string
	timeout time.Duration
	dial    DialFunc
}

func NewMonitor(gate *Gate, hosts []string, timeout time.Duration) *Monitor {
	d := &net.Dialer{}
	return &Monitor{
		gate:    gate,
		hosts:   hosts,
		timeout: timeout,
		dial:    d.DialContext,
	}
}

// WithDialer replaces the dialer, mainly for tests.
func (m *Monitor) WithDialer(dial DialFunc) *Monitor {
	m.dial = dial
	return m
}

// Probe dials every host concurrently and reports whether any answered
// within the timeout. It does not touch the gate.
func (m *Monitor) Probe(ctx context.Context) bool {
	if len(m.hosts) == 0 {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, host := range m.hosts {
		g.Go(func() error {
			conn, err := m.dial(gctx, "tcp", host)
			if err != nil {
				logger.Debug("Connectivity probe failed", "host", host, "error", err)
				return nil
			}
			conn.Close()
			return errReachable
		})
	}
	return errors.Is(g.Wait(), errReachable)
}

// Refresh probes once and stores the result in the gate.
func (m *Monitor) Refresh(ctx context.Context) bool {
	online := m.Probe(ctx)
	m.gate.Set(online)
	return online
}

// Run refreshes the gate every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
