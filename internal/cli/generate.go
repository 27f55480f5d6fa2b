package cli

import (
	"github.com/spf13/cobra"

	"github.com/user/skillgen-service/internal/entity"
)

var (
	genUser    string
	genProject string
	genURL     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Crawl a site and save the generated skills to a project",
	Example: `  skillgen generate --user u_123 --project p_456 --url https://docs.example.com
  skillgen generate --user u_123 --project p_456 --url https://docs.example.com -o json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genUser, "user", "", "ID of the user that owns the project")
	generateCmd.Flags().StringVar(&genProject, "project", "", "Project to attach skills to")
	generateCmd.Flags().StringVar(&genURL, "url", "", "Root URL of the documentation site")
	_ = generateCmd.MarkFlagRequired("user")
	_ = generateCmd.MarkFlagRequired("project")
	_ = generateCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(generateCmd)
}

type generateOutput struct {
	Count  int            `json:"count" yaml:"count"`
	Skills []entity.Skill `json:"skills" yaml:"skills"`
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	deps, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()
	defer func() { _ = log.Sync() }()

	skills, err := deps.Generator.Generate(ctx, genUser, genProject, genURL)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, generateOutput{Count: len(skills), Skills: skills})
}
