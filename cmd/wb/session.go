package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Operating session commands",
	}

	cmd.AddCommand(newSessionStatusCmd())
	cmd.AddCommand(newSessionAdvanceCmd())
	cmd.AddCommand(newSessionRollbackCmd())
	cmd.AddCommand(newSessionDescribeCmd())
	return cmd
}

func newSessionStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current operating session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, err := session.Current(cmd.Context(), st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Date: %s\n", sess.SessionDate)
			if sess.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", sess.Description)
			}
			if sess.PreviousSessionSnapshot != nil {
				fmt.Fprintln(out, "Rollback available: yes")
			} else {
				fmt.Fprintln(out, "Rollback available: no")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func newSessionAdvanceCmd() *cobra.Command {
	var (
		configPath  string
		description string
	)

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance to the next operating session",
		Long:  "Snapshots the current state, ages every car, clears completed trains, and reverts in-progress ones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, stats, err := session.Advance(cmd.Context(), st, description)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Advanced to session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Cars aged: %d\n", stats.CarsUpdated)
			fmt.Fprintf(out, "Completed trains cleared: %d\n", stats.TrainsDeleted)
			if stats.CarsReverted > 0 {
				fmt.Fprintf(out, "In-progress cars reverted: %d\n", stats.CarsReverted)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	cmd.Flags().StringVar(&description, "description", "", "description for the new session")
	return cmd
}

func newSessionRollbackCmd() *cobra.Command {
	var (
		configPath  string
		description string
	)

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back to the previous operating session",
		Long:  "Restores cars, trains, and car orders from the snapshot taken at the last advance.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, stats, err := session.Rollback(cmd.Context(), st, description)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rolled back to session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Cars restored: %d\n", stats.CarsRestored)
			fmt.Fprintf(out, "Trains restored: %d\n", stats.TrainsRestored)
			fmt.Fprintf(out, "Orders restored: %d\n", stats.OrdersRestored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	cmd.Flags().StringVar(&description, "description", "", "description for the restored session")
	return cmd
}

func newSessionDescribeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "describe <text>",
		Short: "Set the current session's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, err := session.UpdateDescription(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %d: %s\n", sess.CurrentSessionNumber, sess.Description)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}
