package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cadenza/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.WriteFile(config.Defaults(), target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", target)
			fmt.Fprintln(cmd.OutOrStdout(), "Edit the file to set media.basedir before starting the server.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, persisted, err := loadPersisted(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rejected := 0
			_, diag := config.Resolve(config.Defaults(), persisted, config.NewSnapshot(), func(key string, err error) {
				rejected++
				fmt.Fprintf(out, "invalid value for %s: %v\n", key, err)
			})

			fmt.Fprintf(out, "Config path: %s\n", path)
			for _, key := range diag.NewKeys {
				fmt.Fprintf(out, "new option (using default): %s\n", key)
			}
			for _, key := range diag.DeprecatedKeys {
				fmt.Fprintf(out, "deprecated option: %s\n", key)
			}
			if rejected > 0 {
				fmt.Fprintf(out, "Configuration loaded with %d invalid value(s); defaults are kept for those keys\n", rejected)
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, persisted, err := loadPersisted(cmd)
			if err != nil {
				return err
			}
			effective, _ := config.Resolve(config.Defaults(), persisted, config.NewSnapshot(), nil)

			defaults := config.Defaults()
			rows := make([][]string, 0, effective.Len())
			for _, prop := range effective.Properties() {
				if prop.Hidden && !showAll {
					continue
				}
				source := "file"
				if def, ok := defaults.Lookup(prop.Key); ok && def.Value == prop.Value {
					source = "default"
				}
				rows = append(rows, []string{prop.Key, prop.Value, source})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value", "Source"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "Include hidden properties")
	return cmd
}

// loadPersisted reads the configured (or default) config file; a missing file
// yields an empty snapshot so the commands work before first run.
func loadPersisted(cmd *cobra.Command) (string, config.Snapshot, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || strings.TrimSpace(path) == "" {
		path, err = config.DefaultConfigPath()
		if err != nil {
			return "", config.Snapshot{}, err
		}
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return path, config.NewSnapshot(), nil
	}
	persisted, err := config.LoadFile(path)
	if err != nil {
		return "", config.Snapshot{}, err
	}
	return path, persisted, nil
}
