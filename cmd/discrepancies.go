package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var discrepanciesCmd = &cobra.Command{
	Use:   "discrepancies <provider-id>",
	Short: "List reconciliation discrepancies for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		discrepancies, err := st.ListDiscrepancies(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "list discrepancies")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(discrepancies)
	},
}

func init() {
	rootCmd.AddCommand(discrepanciesCmd)
}
