package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/luvmdy/SyncTrayzor/internal/adapters/process"
	"github.com/luvmdy/SyncTrayzor/internal/adapters/rest"
	"github.com/luvmdy/SyncTrayzor/internal/cliconfig"
	"github.com/luvmdy/SyncTrayzor/internal/coordinator"
	"github.com/luvmdy/SyncTrayzor/internal/devices"
	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/folders"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

const longHelp = `synctrayd supervises a local Syncthing daemon: it launches the binary,
connects to its REST API, follows its event stream, and keeps folder and
device state reconciled for the lifetime of the process.

Configuration is resolved from defaults, then ~/.config/synctrayd/config.toml,
then SYNCTRAYD_* environment variables, then flags.`

// stopTimeout bounds the graceful shutdown on SIGINT/SIGTERM. A second
// signal kills the daemon immediately.
const stopTimeout = 30 * time.Second

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "synctrayd",
		Short:   "Lifecycle supervisor for a local Syncthing daemon",
		Long:    longHelp,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
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
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg, cfgFile)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.config/synctrayd/config.toml)")
	root.Flags().StringVar(&cfg.SyncthingPath, "syncthing-path", cfg.SyncthingPath, "path to the syncthing executable")
	root.Flags().StringVar(&cfg.Address, "address", cfg.Address, "host:port the daemon's API listens on")
	root.Flags().StringVar(&cfg.APIKey, "api-key", "", "daemon API key (generated when empty)")
	root.Flags().StringVar(&cfg.HomeDir, "home-dir", cfg.HomeDir, "daemon home directory")
	root.Flags().StringArrayVar(&cfg.ExtraFlags, "extra-flags", nil, "extra flags passed to the daemon")
	root.Flags().StringSliceVar(&cfg.DebugFacilities, "debug-facilities", nil, "daemon debug facilities to enable")
	root.Flags().DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "how long to probe the API after launch")
	root.Flags().BoolVar(&cfg.DenyUpgrade, "deny-upgrade", false, "prevent the daemon from upgrading itself")
	root.Flags().BoolVar(&cfg.LowPriority, "low-priority", false, "run the daemon at lowered CPU priority")
	root.Flags().BoolVar(&cfg.HideDeviceIDs, "hide-device-ids", false, "redact device IDs from daemon log output")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, cfgFile string) error {
	logger := log.NewZerolog(cfg.LogLevel)

	supervisor := process.NewSupervisor(logger.With(log.String("component", "supervisor")))
	factory := rest.NewFactory(&http.Client{}, logger.With(log.String("component", "api")))

	coord, err := coordinator.New(cfg.Coordinator(), coordinator.Deps{
		Supervisor:    supervisor,
		ClientFactory: factory,
		Folders:       folders.NewManager(logger.With(log.String("component", "folders"))),
		Devices:       devices.NewManager(logger.With(log.String("component", "devices"))),
		NewEventWatcher: func(src ports.ClientSource, h ports.EventHandler) ports.EventWatcher {
			return rest.NewEventWatcher(src, h, logger.With(log.String("component", "events")))
		},
		NewConnectionsWatcher: func(src ports.ClientSource, h ports.ConnectionStatsHandler) ports.ConnectionsWatcher {
			return rest.NewConnectionsWatcher(src, h, logger.With(log.String("component", "connections")))
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	coord.SubscribeMessageLogged(func(line string) {
		logger.Info("syncthing: " + line)
	})
	coord.SubscribeProcessExitedWithError(func() {
		logger.Error("daemon exited with an error")
	})
	coord.SubscribeDataLoaded(func() {
		snap := coord.SystemSnapshot()
		logger.Info("daemon ready",
			log.String("version", snap.Version),
			log.String("home", snap.HomeTilde),
		)
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if cfgFile != "" {
		watcher := cliconfig.NewConfigWatcher(cfgFile, func(cliconfig.FileConfig) {
			// Launch parameters are baked into the running daemon; a config
			// change takes effect on the next restart.
			logger.Warn("config file changed, restart synctrayd to apply")
		}, logger.With(log.String("component", "configwatcher")))
		go watcher.Run(watchCtx)
	}

	if err := coord.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{}, 1)
	coord.SubscribeStateChanged(func(change coordinator.StateChange) {
		if change.To == domain.StateStopped {
			select {
			case stopped <- struct{}{}:
			default:
			}
		}
	})

	select {
	case <-sigCh:
		logger.Info("received signal, stopping daemon")
	case <-stopped:
		logger.Info("daemon stopped on its own, exiting")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- coord.StopAndWait(stopCtx) }()

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("graceful stop failed, killing daemon", log.Err(err))
			return coord.Kill()
		}
		return nil
	case <-sigCh:
		logger.Warn("second signal, killing daemon")
		return coord.Kill()
	}
}
