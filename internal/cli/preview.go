package cli

import (
	"github.com/spf13/cobra"

	"github.com/user/skillgen-service/internal/app"
)

var previewURL string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the skills a site would produce without saving them",
	Long: `preview crawls the site and asks the model for skills, then prints them.
Nothing is stored, so Postgres and Redis are not needed.`,
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewURL, "url", "", "Root URL of the documentation site")
	_ = previewCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	deps := app.NewPreview(cfg, log)
	defer deps.Close()
	defer func() { _ = log.Sync() }()

	result, err := deps.Generator.Preview(ctx, previewURL)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, result)
}
