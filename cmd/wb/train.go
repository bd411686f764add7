package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/train"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train commands",
	}

	cmd.AddCommand(newTrainListCmd())
	cmd.AddCommand(newTrainShowCmd())
	cmd.AddCommand(newTrainSwitchlistCmd())
	cmd.AddCommand(newTrainCompleteCmd())
	cmd.AddCommand(newTrainCancelCmd())
	return cmd
}

func newTrainListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trains",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			trains, err := train.List(cmd.Context(), st)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(trains) == 0 {
				fmt.Fprintln(out, "No trains found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSESSION\tSTATUS\tCARS\tCAPACITY")
			for _, t := range trains {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\n",
					t.ID, truncate(t.Name, columnWidth()), t.SessionNumber, t.Status,
					len(t.AssignedCarIDs), t.MaxCapacity)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func newTrainShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a train with its route, locomotives, and switch list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := train.GetEnriched(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", t.Name, t.Status)
			fmt.Fprintf(out, "Session: %d\n", t.SessionNumber)
			if t.Route != nil {
				fmt.Fprintf(out, "Route: %s\n", t.Route.Name)
			}
			if len(t.Locomotives) > 0 {
				var marks []string
				for _, l := range t.Locomotives {
					marks = append(marks, l.ReportingMarks+" "+l.ReportingNumber)
				}
				fmt.Fprintf(out, "Power: %s\n", strings.Join(marks, ", "))
			}
			fmt.Fprintf(out, "Capacity: %d cars\n", t.MaxCapacity)

			if t.SwitchList == nil {
				fmt.Fprintln(out, "No switch list generated.")
				return nil
			}
			fmt.Fprintf(out, "\nSwitch list (%d pickups, %d setouts, %d cars at termination):\n",
				t.SwitchList.TotalPickups, t.SwitchList.TotalSetouts, t.SwitchList.FinalCarCount)
			for _, station := range t.SwitchList.Stations {
				if len(station.Pickups) == 0 && len(station.Setouts) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", station.StationName)
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, p := range station.Pickups {
					fmt.Fprintf(w, "  pick up\t%s %s\t-> %s\n", p.ReportingMarks, p.ReportingNumber, p.DestinationIndustryID)
				}
				for _, s := range station.Setouts {
					fmt.Fprintf(w, "  set out\t%s %s\t-> %s\n", s.ReportingMarks, s.ReportingNumber, s.DestinationIndustryID)
				}
				w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func newTrainSwitchlistCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "switchlist <id>",
		Short: "Generate a train's switch list and start the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := train.GenerateSwitchList(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Train %q is %s: %d pickups, %d setouts, %d cars assigned\n",
				t.Name, t.Status, t.SwitchList.TotalPickups, t.SwitchList.TotalSetouts, len(t.AssignedCarIDs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func newTrainCompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a train's run",
		Long:  "Moves every setout car to its destination, marks the train's orders delivered, and completes the train.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := train.Complete(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			setouts := 0
			if t.SwitchList != nil {
				setouts = t.SwitchList.TotalSetouts
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Train %q completed: %d cars delivered\n", t.Name, setouts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}

func newTrainCancelCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a train",
		Long:  "Cancels a train. An in-progress train's orders revert to pending with their assignments cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := train.Cancel(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Train %q cancelled\n", t.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}
