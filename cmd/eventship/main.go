package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/eventship/internal/cliconfig"
	"github.com/bft-labs/eventship/pkg/eventship"
	"github.com/bft-labs/eventship/pkg/log"
)

const helpDescription = `
Deliver product telemetry envelopes to an ingestion service.

Highlights:
  - Envelopes are queued in memory and posted in size bounded JSON batches.
  - Choose how batches leave the process: sync, async, exec (curl) or noop.
  - Delivery is best effort; failures are logged and never retried.
  - Configure via file, env (EVENTSHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  eventship send track --event signup --account acme --user u-1 --api-key <key>
  eventship send - < events.ndjson
  eventship tail --spool /var/spool/app/events.ndjson --metrics-addr :9464
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return eventship.Version
}

// cli carries the layered configuration shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		l := cliconfig.Logger()
		l.Error().Err(err).Msg("eventship")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.Logger()}

	root := &cobra.Command{
		Use:           "eventship",
		Short:         "Deliver product telemetry envelopes to an ingestion service",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.eventship/config.toml)")
	f.StringVar(&c.cfg.Endpoint, "endpoint", c.cfg.Endpoint, "ingestion service base URL")
	f.StringVar(&c.cfg.APIKey, "api-key", c.cfg.APIKey, "API key sent as a bearer token")
	f.StringVar(&c.cfg.APIKeyFile, "api-key-file", c.cfg.APIKeyFile, "file holding the API key")
	f.StringVar(&c.cfg.Proxy, "proxy", c.cfg.Proxy, "proxy URL (http, https, socks5, socks5h)")
	f.BoolVar(&c.cfg.Debug, "debug", c.cfg.Debug, "log every delivery and response")
	f.StringVar(&c.cfg.Transport, "transport", c.cfg.Transport, "delivery strategy: sync, async, exec or noop")
	f.IntVar(&c.cfg.MaxPostLength, "max-post-length", c.cfg.MaxPostLength, "maximum serialized bytes per request")
	f.IntVar(&c.cfg.QueueSize, "queue-size", c.cfg.QueueSize, "maximum queued envelopes before new ones are dropped")
	f.DurationVar(&c.cfg.ConnectTimeout, "connect-timeout", c.cfg.ConnectTimeout, "connection timeout")
	f.DurationVar(&c.cfg.Timeout, "timeout", c.cfg.Timeout, "overall request timeout")
	f.DurationVar(&c.cfg.FlushInterval, "flush-interval", c.cfg.FlushInterval, "periodic flush interval (0 disables)")
	f.StringVar(&c.cfg.StateDir, "state-dir", c.cfg.StateDir, "directory for spool offsets")

	root.AddCommand(
		newSendCommand(c),
		newTailCommand(c),
		newVersionCommand(),
	)
	return root
}

// load layers file, env and flag values (flags win) and validates the result.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := cliconfig.LoadAPIKey(&c.cfg); err != nil {
		return err
	}

	c.log = cliconfig.LoggerFor(cmd.ErrOrStderr(), c.cfg.Debug)

	if c.cfg.APIKeyFile != "" && cliconfig.KeyFileTooOpen(c.cfg.APIKeyFile) {
		c.log.Warn().Str("path", c.cfg.APIKeyFile).Msg("api key file is readable by other users")
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logCfg := c.cfg
	if len(logCfg.APIKey) > 0 {
		logCfg.APIKey = "*****"
	}
	c.log.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}

func (c *cli) newClient(opts ...eventship.Option) (*eventship.Client, error) {
	opts = append([]eventship.Option{
		eventship.WithLogger(log.NewZerologAdapterWithLogger(c.log)),
	}, opts...)
	return eventship.New(c.cfg.ClientConfig(), opts...)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print module versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersions(cmd.OutOrStdout())
		},
	}
}

func printVersions(w io.Writer) {
	fmt.Fprintf(w, "eventship %s %s/%s\n", getVersion(), runtime.GOOS, runtime.GOARCH)
	versions := eventship.ModuleVersions()
	for _, name := range []string{"eventship", "envelope", "batch", "log"} {
		if v, ok := versions[name]; ok {
			fmt.Fprintf(w, "  %-10s %s\n", name, v)
		}
	}
}
