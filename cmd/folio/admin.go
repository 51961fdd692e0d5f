package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/quantmind-br/folio/internal/cache"
	"github.com/quantmind-br/folio/internal/config"
	"github.com/quantmind-br/folio/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFilePath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := config.ConfigFilePath()
			if c.cfgFile != "" {
				path = c.cfgFile
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return err
			}
			if c.cfgFile == "" {
				if err := config.EnsureConfigDir(); err != nil {
					return err
				}
			} else if err := utils.EnsureDir(path); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	open := func(cmd *cobra.Command) (*cache.BadgerCache, string, error) {
		cfg, err := c.loadConfig(cmd)
		if err != nil {
			return nil, "", err
		}
		dir := utils.ExpandPath(cfg.Cache.Directory)
		opts := cache.DefaultOptions()
		opts.Directory = dir
		bc, err := cache.NewBadgerCache(opts)
		if err != nil {
			return nil, dir, fmt.Errorf("failed to open cache %s: %w", dir, err)
		}
		return bc, dir, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show render cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, dir, err := open(cmd)
			if err != nil {
				return err
			}
			defer bc.Close()

			stats := bc.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, nameStyle.Render("directory")+dir)
			for _, key := range []string{"entries", "lsm_size", "vlog_size"} {
				fmt.Fprintln(out, nameStyle.Render(key)+fmt.Sprint(stats[key]))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, dir, err := open(cmd)
			if err != nil {
				return err
			}
			defer bc.Close()

			if err := bc.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", dir)
			return nil
		},
	})

	return cmd
}
