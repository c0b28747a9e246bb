package connectivity

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	apperrors "github.com/julianstephens/moodlit/internal/errors"
)

func TestGateCheck(t *testing.T) {
	g := NewGate(false)
	if err := g.Check("submit"); !errors.Is(err, apperrors.ErrNetworkUnavailable) {
		t.Errorf("Check() offline = %v, want ErrNetworkUnavailable", err)
	}
	g.Set(true)
	if err := g.Check("submit"); err != nil {
		t.Errorf("Check() online = %v, want nil", err)
	}
}

func TestGateNotifiesOnChangeOnly(t *testing.T) {
	g := NewGate(true)
	var got []bool
	unsubscribe := g.Subscribe(func(online bool) { got = append(got, online) })

	g.Set(true)
	g.Set(false)
	g.Set(false)
	g.Set(true)
	unsubscribe()
	g.Set(false)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("callbacks = %v, want [false true]", got)
	}
}

func TestMonitorProbe(t *testing.T) {
	tests := []struct {
		name      string
		reachable map[string]bool
		want      bool
	}{
		{"all down", map[string]bool{}, false},
		{"one up", map[string]bool{"b:443": true}, true},
		{"all up", map[string]bool{"a:443": true, "b:443": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			var dialed []string
			dial := func(ctx context.Context, network, address string) (net.Conn, error) {
				mu.Lock()
				dialed = append(dialed, address)
				mu.Unlock()
				if tt.reachable[address] {
					client, server := net.Pipe()
					server.Close()
					return client, nil
				}
				return nil, errors.New("connection refused")
			}

			gate := NewGate(!tt.want)
			m := NewMonitor(gate, []string{"a:443", "b:443"}, time.Second).WithDialer(dial)
			if got := m.Refresh(context.Background()); got != tt.want {
				t.Errorf("Refresh() = %v, want %v", got, tt.want)
			}
			if gate.Online() != tt.want {
				t.Errorf("gate.Online() = %v, want %v", gate.Online(), tt.want)
			}
			if len(dialed) == 0 {
				t.Error("no probes were dialed")
			}
		})
	}
}

func TestMonitorWithoutHostsIsOffline(t *testing.T) {
	m := NewMonitor(NewGate(true), nil, time.Second)
	if m.Probe(context.Background()) {
		t.Error("Probe() with no hosts should report offline")
	}
}
