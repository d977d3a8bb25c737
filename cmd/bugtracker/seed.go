package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugtrackr/bug-tracker/internal/seed"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample bugs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		d, err := loadDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close()

		created, err := seed.Run(ctx, d.bugService(nil), seedReset, d.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s inserted %d sample bugs\n", successPrefix, len(created))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete every existing bug before seeding")
	rootCmd.AddCommand(seedCmd)
}
