// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface of the activation console using
// the Cobra library. It defines the root command, which runs the interactive
// session, its flags and the shared startup wiring used by the subcommands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/activation-console/buildvars"
	"github.com/toeirei/activation-console/internal/config"
	"github.com/toeirei/activation-console/internal/core"
	"github.com/toeirei/activation-console/internal/engine/sandbox"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/internal/seat"
	"github.com/toeirei/activation-console/internal/storage"
	"github.com/toeirei/activation-console/internal/terminal"
	"github.com/toeirei/activation-console/internal/ui"
)

const modulePath = "github.com/toeirei/activation-console"

// seatKey holds the generated seat ID so offline tokens stay valid across runs.
const seatKey = "console/seat_id"

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var verbose bool
var showVersionFlag bool
var resetStorage bool
var keepStorage bool

var appConfig config.Config

// loadSettings loads and validates the configuration for cmd. A missing file
// is replaced by a default template, which validation then rejects until the
// licensing fields are filled in.
func loadSettings(cmd *cobra.Command) error {
	explicitPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	cfg, used, err := config.LoadConfig[config.Config](cmd, config.Defaults(), explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		path, writeErr := config.WriteConfigFile(&cfg, false)
		if writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else {
			logging.Infof("wrote default config to %s", path)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	} else {
		logging.Debugf("using config file %s", used)
	}

	i18n.Init(cfg.Language)

	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}

		if path == "" {
			return nil, nil
		}

		// Make sure the user-provided file exists to avoid unwanted behavior.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

func openStore(ctx context.Context) (*storage.Store, error) {
	st, err := storage.Open(ctx, appConfig.Storage.Type, appConfig.Storage.Dsn)
	if err != nil {
		return nil, errors.New(i18n.T("cli.error_open_storage", err))
	}
	logging.Debugf("storage: %s", st.ID())
	return st, nil
}

func loadCatalog() (*sandbox.Catalog, error) {
	if appConfig.Sandbox.Catalog == "" {
		return sandbox.DefaultCatalog()
	}
	return sandbox.LoadCatalog(appConfig.Sandbox.Catalog)
}

func sandboxOptions(st *storage.Store, catalog *sandbox.Catalog, seatID string) sandbox.Options {
	return sandbox.Options{
		APIURL:              appConfig.Licensing.ApiUrl,
		TenantID:            appConfig.Licensing.TenantId,
		ProductID:           appConfig.Licensing.ProductId,
		TenantRsaKeyModulus: appConfig.Licensing.TenantRsaKeyModulus,
		SeatID:              seatID,
		Store:               st,
		Catalog:             catalog,
	}
}

func newConsole(cmd *cobra.Command) *ui.Console {
	return ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), ui.WithClipboard(appConfig.Clipboard))
}

// runConsole is the interactive entry point: storage check, seat resolution,
// engine initialization and the session loop.
func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := newConsole(cmd)
	raw := terminal.New(terminal.Policy(appConfig.Terminal.RawTokenInput))
	prompt := core.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout(), raw)

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := checkPersistedData(ctx, storage.NewActivationStorage(st), prompt, out); err != nil {
		return err
	}

	resolver := &seat.Resolver{
		UseModule:  appConfig.UseCoreLibrary,
		ModulePath: appConfig.CoreLibPath,
		Prompt:     prompt,
		Generate:   storedSeatID(ctx, st),
	}
	seatID, err := resolver.Resolve()
	if err != nil {
		return err
	}
	out.Info(seatID.Message())
	logging.Debugf("seat id source: %s", seatID.Source)

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	eng, err := sandbox.New(sandboxOptions(st, catalog, seatID.ID))
	if err != nil {
		return err
	}

	session := core.NewSession(core.Env{Engine: eng, Prompt: prompt, Out: out})
	session.Initialize(ctx)
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	out.Info(i18n.T("cli.goodbye"))
	return nil
}

// storedSeatID returns the seat ID generated by an earlier run, or generates
// and stores a new one.
func storedSeatID(ctx context.Context, st *storage.Store) func() string {
	return func() string {
		if raw, err := st.Get(ctx, seatKey); err == nil && len(raw) > 0 {
			return string(raw)
		}
		id := uuid.NewString()
		if err := st.Put(ctx, seatKey, []byte(id)); err != nil {
			logging.Warnf("could not store generated seat id: %v", err)
		}
		return id
	}
}

// checkPersistedData offers to delete a snapshot left by an earlier run.
func checkPersistedData(ctx context.Context, local *storage.ActivationStorage, prompt core.Prompter, out core.Presenter) error {
	data, err := local.Load(ctx)
	if err != nil {
		logging.Warnf("could not read persisted activation: %v", err)
		return nil
	}
	if data.IsEmpty() || keepStorage {
		return nil
	}

	remove := resetStorage
	if !remove {
		out.Info(i18n.T("cli.persisted_found", local.StorageID()))
		remove, err = prompt.Confirm(i18n.T("cli.persisted_delete_prompt"))
		if err != nil {
			return err
		}
	}
	if !remove {
		return nil
	}
	if err := local.Clear(ctx); err != nil {
		return fmt.Errorf("delete persisted activation: %w", err)
	}
	out.Success(i18n.T("cli.persisted_deleted"))
	return nil
}

// Execute runs the CLI entrypoint. The main package calls this function and
// handles process exit.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func applyStorageFlags(cmd *cobra.Command) {
	// NewRootCmd may be called several times in tests; pflag panics on
	// duplicate definitions.
	if cmd.PersistentFlags().Lookup("storage.type") == nil {
		cmd.PersistentFlags().String("storage.type", "sqlite", "Storage type (sqlite, postgres, mysql)")
	}
	if cmd.PersistentFlags().Lookup("storage.dsn") == nil {
		cmd.PersistentFlags().String("storage.dsn", "", "Storage connection string (DSN)")
	}
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activation-console",
		Short: "Interactive client for the license activation lifecycle.",
		Long: `activation-console drives a license activation through its lifecycle:
online and offline activation, lease refresh, feature checkout, return and
usage tracking, reconciliation with the server and deactivation.

Running without a subcommand starts the interactive menu.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			logging.SetDebug(verbose)
			if cmd.Name() == "version" {
				return nil
			}
			return loadSettings(cmd)
		},
		RunE: runConsole,
	}

	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (appsettings.json or .yaml)")
	cmd.PersistentFlags().String("language", "en", `Console language ("en", "de")`)
	applyStorageFlags(cmd)
	cmd.Flags().BoolVar(&resetStorage, "reset", false, "Delete persisted activation data at startup without asking")
	cmd.Flags().BoolVar(&keepStorage, "keep", false, "Keep persisted activation data at startup without asking")
	cmd.MarkFlagsMutuallyExclusive("reset", "keep")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", v)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		newStateCmd(),
		newResetCmd(),
		newPortalCmd(),
		versionCmd,
	)

	return cmd
}

// compositeVersion is the one-line version shown by -V and the root command.
func compositeVersion() string {
	return formatVersion(resolveBuildVersion(nil))
}

// formatVersion joins version, commit and build date into one line. A "dev"
// commit is left out.
func formatVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. This helper is separated to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	if buildvars.Commit != "" {
		resolvedCommit = buildvars.Commit
	}
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// If Main doesn't contain the version (some build paths), try to
		// find our module in the dependencies and use that version.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort, if no version was discovered, but a gitCommit was
	// provided via ldflags, show that to aid support.
	if resolvedVersion == "dev" && resolvedCommit != "dev" && resolvedCommit != "" {
		resolvedVersion = resolvedCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
