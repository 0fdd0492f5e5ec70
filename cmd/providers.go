package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/store"
)

var (
	listStatus string
	listState  string
	listLimit  int
	listOffset int
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect provider records",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provider records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListProviders(ctx, store.ProviderFilter{
			Status: model.ReviewStatus(listStatus),
			State:  listState,
			Limit:  listLimit,
			Offset: listOffset,
		})
		if err != nil {
			return eris.Wrap(err, "list providers")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

var providersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single provider record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.GetProvider(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "get provider")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	providersListCmd.Flags().StringVar(&listStatus, "status", "", "filter by validation status")
	providersListCmd.Flags().StringVar(&listState, "state", "", "filter by state")
	providersListCmd.Flags().IntVar(&listLimit, "limit", 50, "max records to return")
	providersListCmd.Flags().IntVar(&listOffset, "offset", 0, "records to skip")

	providersCmd.AddCommand(providersListCmd, providersGetCmd)
	rootCmd.AddCommand(providersCmd)
}
