// Package spooltail feeds envelopes written by other processes into a
// client. Producers append one JSON envelope per line to a spool file; the
// tailer picks new lines up on file system notifications (with a polling
// fallback), queues them, flushes, and persists the read offset so that a
// restart resumes where it stopped.
package spooltail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/eventship/internal/adapters/fs"
	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/eventship"
)

// maxLineBytes bounds a single spool line; longer lines are skipped.
const maxLineBytes = 1 << 20

// Config contains configuration for the spool tailer.
type Config struct {
	// Path is the NDJSON spool file. Required.
	Path string

	// PollInterval re-reads the spool even without notifications.
	// Default: 5s
	PollInterval time.Duration

	// ChunkLines is the number of lines queued between flushes. Keep it at
	// or below the client's queue size.
	// Default: 100
	ChunkLines int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		ChunkLines:   100,
	}
}

// Plugin tails a spool file into an eventship.Sink.
type Plugin struct {
	cfg Config

	mu     sync.Mutex
	sink   eventship.Sink
	logger ports.Logger
	clock  clock.Clock
	repo   ports.SpoolStateRepository
	state  domain.SpoolState
	ident  os.FileInfo
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a spool tailer with the given configuration.
func New(cfg Config) *Plugin {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ChunkLines <= 0 {
		cfg.ChunkLines = def.ChunkLines
	}
	return &Plugin{cfg: cfg}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "spooltail"
}

// Initialize loads the saved offset and starts tailing.
// Without a StateDir the offset lives in memory only.
func (p *Plugin) Initialize(ctx context.Context, cfg eventship.PluginConfig) error {
	if p.cfg.Path == "" {
		return fmt.Errorf("%w: spool path is required", domain.ErrInvalidConfig)
	}

	p.sink = cfg.Sink
	p.logger = cfg.Logger
	p.clock = cfg.Clock
	if p.clock == nil {
		p.clock = clock.New()
	}
	if cfg.StateDir != "" {
		p.repo = fs.NewSpoolStateFile(cfg.StateDir, p.cfg.Path)
	} else {
		p.repo = &memoryState{}
	}

	state, err := p.repo.Load(ctx)
	if err != nil {
		p.logger.Warn("spool state unreadable, starting from the beginning",
			ports.String("spool", p.cfg.Path),
			ports.Err(err))
		state = domain.SpoolState{}
	}
	if state.Path != p.cfg.Path {
		state.Reset(p.cfg.Path)
	}
	p.state = state

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(p.cfg.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("spool tailer started",
		ports.String("spool", p.cfg.Path),
		ports.Int64("offset", p.state.Offset))

	p.wg.Add(1)
	go p.run(runCtx, watcher)
	return nil
}

// Shutdown stops tailing and waits for the current drain to finish.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current read position.
func (p *Plugin) State() domain.SpoolState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Plugin) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	ticker := p.clock.Ticker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.cfg.Path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.drain(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("spool watcher error", ports.Err(err))

		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain reads every complete line past the saved offset.
func (p *Plugin) drain(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(p.cfg.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("open spool", ports.String("spool", p.cfg.Path), ports.Err(err))
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		p.logger.Warn("stat spool", ports.String("spool", p.cfg.Path), ports.Err(err))
		return
	}
	if p.rotated(info) {
		p.logger.Info("spool truncated or replaced, rewinding",
			ports.String("spool", p.cfg.Path),
			ports.Int64("previous_offset", p.state.Offset))
		p.state.Reset(p.cfg.Path)
	}
	p.ident = info

	if _, err := f.Seek(p.state.Offset, io.SeekStart); err != nil {
		p.logger.Warn("seek spool", ports.String("spool", p.cfg.Path), ports.Err(err))
		return
	}

	r := bufio.NewReader(f)
	var consumed int64
	var lines int
	for ctx.Err() == nil {
		line, err := r.ReadBytes('\n')
		if err != nil {
			// A trailing fragment without newline is still being written.
			break
		}
		consumed += int64(len(line))
		lines++
		p.appendLine(line)

		if lines == p.cfg.ChunkLines {
			if !p.commit(ctx, consumed, lines) {
				return
			}
			consumed, lines = 0, 0
		}
	}
	if lines > 0 {
		p.commit(ctx, consumed, lines)
	}
}

func (p *Plugin) rotated(info os.FileInfo) bool {
	if info.Size() < p.state.Offset {
		return true
	}
	return p.ident != nil && !os.SameFile(p.ident, info)
}

func (p *Plugin) appendLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	if len(line) > maxLineBytes {
		p.logger.Warn("skipping oversized spool line", ports.Int("bytes", len(line)))
		return
	}
	e, err := envelope.Decode(line)
	if err != nil {
		p.logger.Warn("skipping malformed spool line", ports.Err(err))
		return
	}
	p.sink.Append(e)
}

// commit flushes what was queued and then persists the new offset, so a
// crash in between re-sends at most one chunk. Once ctx is done the offset
// stays at the last committed chunk: the queued envelopes leave with the
// client's final flush and the lines are read again on resume.
func (p *Plugin) commit(ctx context.Context, consumed int64, lines int) bool {
	if ctx.Err() != nil {
		return false
	}
	p.sink.Flush(ctx)
	if ctx.Err() != nil {
		return false
	}
	p.state.Advance(consumed, lines, p.clock.Now())
	if err := p.repo.Save(ctx, p.state); err != nil {
		p.logger.Error("save spool state", ports.String("spool", p.cfg.Path), ports.Err(err))
	}
	return true
}

// memoryState keeps the offset for the lifetime of the process only.
type memoryState struct {
	mu    sync.Mutex
	state domain.SpoolState
}

func (m *memoryState) Load(context.Context) (domain.SpoolState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memoryState) Save(_ context.Context, s domain.SpoolState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}
