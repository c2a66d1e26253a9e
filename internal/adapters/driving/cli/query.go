package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	queryK    int
	queryUser string
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Index the data directory and run one query",
	Long: `Scans the data directory once, then prints the passages most relevant
to the query as the JSON array POST /v1/retrieve would return.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", domain.DefaultRetrieveK, "maximum number of results")
	queryCmd.Flags().StringVarP(&queryUser, "user", "u", "", "tenant whose documents may be returned")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if _, err := a.retrieval.Scan(ctx); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	results, err := a.retrieval.Retrieve(ctx, domain.RetrieveRequest{
		Query:  args[0],
		K:      &queryK,
		UserID: queryUser,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
