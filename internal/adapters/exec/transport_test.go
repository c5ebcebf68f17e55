package exec

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
	"github.com/bft-labs/eventship/pkg/log"
)

type fakeProcess struct {
	exit chan error
}

func (p *fakeProcess) Pid() int    { return 4242 }
func (p *fakeProcess) Wait() error { return <-p.exit }

type fakeLauncher struct {
	mu       sync.Mutex
	lookErr  error
	startErr error
	started  [][]string
	procs    []*fakeProcess
}

func (l *fakeLauncher) LookPath(name string) (string, error) {
	if l.lookErr != nil {
		return "", l.lookErr
	}
	return "/usr/bin/" + name, nil
}

func (l *fakeLauncher) Start(name string, args ...string) (ports.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.startErr != nil {
		return nil, l.startErr
	}
	l.started = append(l.started, append([]string{name}, args...))
	p := &fakeProcess{exit: make(chan error, 1)}
	l.procs = append(l.procs, p)
	return p, nil
}

func enabledConfig() ports.TransportConfig {
	return ports.TransportConfig{
		Endpoint: "https://ingest.example.com/api",
		APIKey:   "k-123",
	}
}

func TestNewTransport_CurlMissing(t *testing.T) {
	_, err := NewTransport(enabledConfig(), &fakeLauncher{lookErr: errors.New("not found")}, log.NewNoopLogger())
	assert.ErrorIs(t, err, domain.ErrSpawnUnavailable)
}

func TestNewTransport_Windows(t *testing.T) {
	prev := goos
	goos = "windows"
	defer func() { goos = prev }()

	_, err := NewTransport(enabledConfig(), &fakeLauncher{}, log.NewNoopLogger())
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
}

func TestTransport_Args(t *testing.T) {
	cfg := enabledConfig()
	cfg.Proxy = "http://proxy.local:3128"
	cfg.ConnectTimeout = 1500 * time.Millisecond
	tr, err := NewTransport(cfg, &fakeLauncher{}, log.NewNoopLogger())
	require.NoError(t, err)

	args := tr.Args("/login", []byte(`[{"type":"track"}]`))

	assert.Equal(t, []string{
		"--silent",
		"--show-error",
		"--fail",
		"--output", "/dev/null",
		"--request", "POST",
		"--connect-timeout", "1.5",
		"--max-time", "10",
		"--header", "Content-Type: application/json",
		"--header", "Accept: application/json",
		"--header", "Authorization: Bearer k-123",
		"--proxy", "http://proxy.local:3128",
		"--data-binary", `[{"type":"track"}]`,
		"https://ingest.example.com/api/login",
	}, args)
}

func TestTransport_SendStartsDetachedProcess(t *testing.T) {
	launcher := &fakeLauncher{}
	tr, err := NewTransport(enabledConfig(), launcher, log.NewNoopLogger())
	require.NoError(t, err)

	outcome := tr.Send(context.Background(), "/track", []byte(`[]`))

	assert.True(t, outcome.Success)
	assert.True(t, outcome.Detached)
	require.Len(t, launcher.started, 1)
	assert.Equal(t, "/usr/bin/curl", launcher.started[0][0])

	// Still running: Wait times out.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Wait(ctx), context.DeadlineExceeded)

	launcher.procs[0].exit <- errors.New("exit status 22")
	require.NoError(t, tr.Wait(context.Background()))
}

func TestTransport_SendStartFailure(t *testing.T) {
	launcher := &fakeLauncher{}
	tr, err := NewTransport(enabledConfig(), launcher, log.NewNoopLogger())
	require.NoError(t, err)
	launcher.startErr = errors.New("fork: resource temporarily unavailable")

	outcome := tr.Send(context.Background(), "/track", []byte(`[]`))

	assert.False(t, outcome.Success)
	assert.ErrorIs(t, outcome.Err, domain.ErrSpawnUnavailable)
}

func TestTransport_DisabledNeverStarts(t *testing.T) {
	launcher := &fakeLauncher{}
	tr, err := NewTransport(ports.TransportConfig{Endpoint: "https://x"}, launcher, log.NewNoopLogger())
	require.NoError(t, err)

	outcome := tr.Send(context.Background(), "/track", []byte(`[]`))

	assert.ErrorIs(t, outcome.Err, domain.ErrTransportDisabled)
	assert.Empty(t, launcher.started)
}
