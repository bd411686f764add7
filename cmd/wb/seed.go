package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed <layout.yaml>",
		Short: "Import a layout description",
		Long:  "Imports stations, AAR types, industries, routes, locomotives, and cars from a YAML layout file. Supplied ids are preserved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := seed.ImportFile(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d records from %s\n", res.Total(), args[0])
			fmt.Fprintf(out, "Stations: %d\n", res.Stations)
			fmt.Fprintf(out, "AAR types: %d\n", res.AarTypes)
			fmt.Fprintf(out, "Industries: %d\n", res.Industries)
			fmt.Fprintf(out, "Routes: %d\n", res.Routes)
			fmt.Fprintf(out, "Locomotives: %d\n", res.Locomotives)
			fmt.Fprintf(out, "Cars: %d\n", res.Cars)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	return cmd
}
