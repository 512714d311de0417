package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"cadenza/internal/bootstrap"
	"cadenza/internal/refresh"
)

// Build-time variables (injected via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

type rootFlags struct {
	configPath     string
	dataDir        string
	refreshTargets []string
	refreshAll     bool
	rebuild        bool
	newConfig      bool
	setupOnly      bool
	overrides      []string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "cadenza",
		Short:         "A standalone music streaming server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(flags)
			if err != nil {
				return err
			}
			opts.Stdout = cmd.OutOrStdout()
			return bootstrap.Run(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Data directory holding the index, marker, and logs")
	rootCmd.Flags().StringArrayVar(&flags.refreshTargets, "refresh", nil, "Refresh only the named media paths (repeatable)")
	rootCmd.Flags().BoolVar(&flags.refreshAll, "refresh-all", false, "Rebuild the entire media index in the background")
	rootCmd.Flags().BoolVar(&flags.rebuild, "rebuild-database", false, "Drop the index database and force a full refresh")
	rootCmd.Flags().BoolVar(&flags.newConfig, "new-config", false, "Write a pristine defaults file next to the active config and exit")
	rootCmd.Flags().BoolVar(&flags.setupOnly, "setup", false, "Run startup through the refresh launch, then exit without serving")
	rootCmd.Flags().StringArrayVar(&flags.overrides, "set", nil, "Override a configuration key (key=value, repeatable)")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func buildOptions(flags *rootFlags) (bootstrap.Options, error) {
	request, err := buildRefreshRequest(flags.refreshAll, flags.refreshTargets)
	if err != nil {
		return bootstrap.Options{}, err
	}
	overrides, err := parseOverrides(flags.overrides)
	if err != nil {
		return bootstrap.Options{}, err
	}

	return bootstrap.Options{
		ConfigPath:      flags.configPath,
		DataDir:         flags.dataDir,
		Overrides:       overrides,
		Refresh:         request,
		RebuildDatabase: flags.rebuild,
		SetupOnly:       flags.setupOnly,
		WriteNewConfig:  flags.newConfig,
		Version:         version,
		Consent: func(reasons []string) bool {
			return promptSchemaConsent(reasons, flags.dataDir)
		},
	}, nil
}

func buildRefreshRequest(all bool, targets []string) (refresh.Request, error) {
	if all && len(targets) > 0 {
		return refresh.Request{}, fmt.Errorf("--refresh-all cannot be combined with --refresh")
	}
	switch {
	case all:
		return refresh.Full(), nil
	case len(targets) > 0:
		return refresh.Partial(targets), nil
	default:
		return refresh.None(), nil
	}
}

func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected key=value", pair)
		}
		overrides[key] = value
	}
	return overrides, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cadenza %s (%s, %s)\n", version, commit, runtime.Version())
		},
	}
}
