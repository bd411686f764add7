package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/carorder"
)

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Car order commands",
	}

	cmd.AddCommand(newOrderListCmd())
	cmd.AddCommand(newOrderGenerateCmd())
	return cmd
}

func newOrderListCmd() *cobra.Command {
	var (
		configPath    string
		industryID    string
		status        string
		sessionNumber int
		aarTypeID     string
		search        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List car orders",
		Long:  "Lists car orders, newest first, with optional filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			orders, err := carorder.List(cmd.Context(), st, carorder.Filters{
				IndustryID:    industryID,
				Status:        status,
				SessionNumber: sessionNumber,
				AarTypeID:     aarTypeID,
				Search:        search,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(orders) == 0 {
				fmt.Fprintln(out, "No car orders found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tINDUSTRY\tTYPE\tSESSION\tSTATUS\tCAR\tTRAIN")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					o.ID, o.IndustryID, o.AarTypeID, o.SessionNumber, o.Status,
					dashPtr(o.AssignedCarID), dashPtr(o.AssignedTrainID))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	cmd.Flags().StringVar(&industryID, "industry", "", "filter by industry id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&sessionNumber, "session", 0, "filter by session number")
	cmd.Flags().StringVar(&aarTypeID, "type", "", "filter by AAR type id")
	cmd.Flags().StringVar(&search, "search", "", "match industry name or car type")
	return cmd
}

func newOrderGenerateCmd() *cobra.Command {
	var (
		configPath    string
		sessionNumber int
		industryIDs   []string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate car orders from industry demand",
		Long:  "Creates orders for every industry demand config due this session. Already-pending duplicates are skipped unless --force.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := carorder.Generate(cmd.Context(), st, carorder.GenerateOpts{
				SessionNumber: sessionNumber,
				IndustryIDs:   industryIDs,
				Force:         force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %d: generated %d orders across %d industries\n",
				res.SessionNumber, res.OrdersGenerated, res.IndustriesProcessed)
			if res.OrdersGenerated > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "INDUSTRY\tORDERS")
				for industryID, n := range res.Summary.ByIndustry {
					fmt.Fprintf(w, "%s\t%d\n", industryID, n)
				}
				w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	cmd.Flags().IntVar(&sessionNumber, "session", 0, "session number (default: current)")
	cmd.Flags().StringSliceVar(&industryIDs, "industry", nil, "limit to these industry ids")
	cmd.Flags().BoolVar(&force, "force", false, "generate even when pending duplicates exist")
	return cmd
}
