package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/store"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Waybill database",
		Long:  "Connects to the configured backend and migrates the documents table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config for layout %q\n", cfg.Layout)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	switch cfg.Storage.Driver {
	case "mysql":
		fmt.Fprintf(out, "Connected to MySQL at %s:%d/%s\n", cfg.Storage.Host, cfg.Storage.Port, cfg.Storage.Database)
	default:
		fmt.Fprintf(out, "Opened SQLite database %s\n", cfg.Storage.Path)
	}

	if err := store.AutoMigrate(db); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migrated documents table")

	fmt.Fprintln(out, "\nWaybill database initialized successfully.")
	return nil
}
