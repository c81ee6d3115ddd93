package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/output"
	"github.com/contriblens/contriblens/internal/store"
)

func newGetCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <opportunity-id>",
		Short: "Show one opportunity by id",
		Long: `Fetch a single opportunity by id. Lookups go through the store's
id cache, so repeated gets of the same opportunity skip the database.

Examples:
  contriblens get opp-42
  contriblens get opp-42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, id string, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	opp, err := p.Get(ctx, id)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if strings.EqualFold(format, "json") {
		return out.JSON(opp)
	}

	printOpportunity(out, opp)
	return nil
}

func printOpportunity(out *output.Writer, opp *store.Opportunity) {
	status := "open"
	if !opp.IsOpen() {
		status = "completed"
	}

	out.Statusf("•", "%s: %s", opp.ID, opp.Title)
	if opp.Description != "" {
		out.Detail(opp.Description)
	}
	out.Detail(fmt.Sprintf("Repository: %s", opp.RepoID))
	out.Detail(fmt.Sprintf("Difficulty: %s, status: %s", opp.Difficulty, status))
	if len(opp.RequiredSkills) > 0 {
		out.Detail(fmt.Sprintf("Skills: %s", strings.Join(opp.RequiredSkills, ", ")))
	}
	if opp.EstimatedHours > 0 {
		out.Detail(fmt.Sprintf("Estimated effort: %.0fh/week", opp.EstimatedHours))
	}
	out.Detail(fmt.Sprintf("Engagement: %d applications, %d views",
		opp.ApplicationCount, opp.ViewCount))
}
