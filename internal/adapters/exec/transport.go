// Package exec hands each batch to a detached curl process. It exists for
// hosts where in-process goroutines may not outlive the request that
// produced the events.
package exec

import (
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
)

// CurlBinary is the executable looked up on PATH.
const CurlBinary = "curl"

// goos is replaced in tests.
var goos = runtime.GOOS

// Transport implements ports.Transport by starting one curl per batch.
type Transport struct {
	config   ports.TransportConfig
	launcher ports.ProcessLauncher
	curl     string
	logger   ports.Logger
	reapers  sync.WaitGroup
}

// NewTransport resolves curl through launcher. It fails with
// ErrUnsupportedPlatform on Windows and ErrSpawnUnavailable when curl
// cannot be found.
func NewTransport(config ports.TransportConfig, launcher ports.ProcessLauncher, logger ports.Logger) (*Transport, error) {
	if goos == "windows" {
		return nil, fmt.Errorf("%w: exec strategy needs a POSIX host", domain.ErrUnsupportedPlatform)
	}
	curl, err := launcher.LookPath(CurlBinary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpawnUnavailable, err)
	}
	return &Transport{
		config:   config,
		launcher: launcher,
		curl:     curl,
		logger:   logger,
	}, nil
}

// Name returns the strategy name.
func (t *Transport) Name() string {
	return string(domain.StrategyExec)
}

// Enabled reports whether endpoint and API key are configured.
func (t *Transport) Enabled() bool {
	return t.config.Enabled()
}

// Send starts curl and returns without waiting for it.
func (t *Transport) Send(_ context.Context, path string, payload []byte) domain.Outcome {
	if !t.Enabled() {
		return domain.Failed(0, domain.ErrTransportDisabled)
	}

	proc, err := t.launcher.Start(t.curl, t.Args(path, payload)...)
	if err != nil {
		return domain.Failed(0, fmt.Errorf("%w: %v", domain.ErrSpawnUnavailable, err))
	}

	t.reapers.Add(1)
	go t.reap(proc, path, len(payload))

	return domain.Outcome{Success: true, Detached: true}
}

// Args builds the curl command line. The payload always starts with '[', so
// --data-binary never treats it as a file reference.
func (t *Transport) Args(path string, payload []byte) []string {
	connect := t.config.ConnectTimeout
	if connect <= 0 {
		connect = 5 * time.Second
	}
	total := t.config.Timeout
	if total <= 0 {
		total = 10 * time.Second
	}

	args := []string{
		"--silent",
		"--show-error",
		"--fail",
		"--output", "/dev/null",
		"--request", "POST",
		"--connect-timeout", seconds(connect),
		"--max-time", seconds(total),
	}
	for _, h := range t.config.Headers() {
		args = append(args, "--header", h[0]+": "+h[1])
	}
	if t.config.Proxy != "" {
		args = append(args, "--proxy", t.config.Proxy)
	}
	return append(args, "--data-binary", string(payload), t.config.Endpoint+path)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func (t *Transport) reap(proc ports.Process, path string, size int) {
	defer t.reapers.Done()

	err := proc.Wait()
	if err == nil {
		t.logger.Debug("detached delivery done",
			ports.Strategy(t.Name()),
			ports.String("path", path),
			ports.Int("pid", proc.Pid()),
		)
		return
	}

	code := -1
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	t.logger.Warn("detached delivery failed",
		ports.Strategy(t.Name()),
		ports.String("path", path),
		ports.Int("pid", proc.Pid()),
		ports.Int("exit_code", code),
		ports.Bytes(size),
		ports.Err(err),
	)
}

// Wait blocks until every started curl has exited or ctx is done.
func (t *Transport) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.reapers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
