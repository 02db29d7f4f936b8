package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cmdipass/internal/app"
	"cmdipass/internal/domain"
	"cmdipass/internal/store"
	"cmdipass/internal/transport"
)

// Version is set at build time with -ldflags "-X cmdipass/cmd/cmdipass/commands.Version=...".
var Version = "0.2.0"

var (
	configPath string
	useXC      bool
	httpURL    string
	socketPath string
	verbose    bool
	format     = formatText

	appCtx *app.App
)

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		reportError(os.Stderr, err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "cmdipass",
		Short:         "Fetch credentials from KeePassHTTP or KeePassXC-Browser",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			backend := domain.BackendKeePassHTTP
			if useXC {
				backend = domain.BackendKeePassXC
			}

			a, err := app.New(app.Config{
				StorePath: configPath,
				Backend:   backend,
				URL:       httpURL,
				Socket:    socketPath,
				Logger:    logger,
				Notices:   stderr,
			})
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("cmdipass-{{.Version}}\n")

	format = formatText
	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "association file (default $"+store.EnvConfigPath+" or ~/"+store.DefaultFileName+")")
	pf.BoolVar(&useXC, "xc", false, "use the KeePassXC-Browser protocol")
	pf.StringVar(&httpURL, "url", transport.DefaultKeePassHTTPURL, "KeePassHTTP endpoint")
	pf.StringVar(&socketPath, "socket", "", "KeePassXC socket or pipe (default "+transport.DefaultSocketPath()+")")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log protocol steps to stderr")
	pf.VarP(&format, "format", "o", "output format: text, json or yaml")

	root.AddCommand(getCmd(), getOneCmd(), associateCmd(), statusCmd(), versionCmd())
	return root
}

// reportError prints err and, for a rejected stored association, how to
// recover.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, domain.ErrConfigRejected) && appCtx != nil {
		fmt.Fprintf(w, "Config rejected by %s. Make sure that the correct database is open, or delete your config file (%s) and re-associate.\n",
			appCtx.Backend(), appCtx.StorePath())
	}
}
