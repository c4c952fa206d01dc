package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"genr8-backend/internal/app"
	"genr8-backend/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of drafts",
	Long: `Generate --count drafts for one generator type and charge one credit each.
With --save-to or --new-project the drafts are saved as assets.`,
	RunE: withApp(runGenerate),
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List saved assets",
	RunE:  withApp(runAssets),
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE:  withApp(runProjects),
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the local profile and credit balance",
	RunE:  withApp(runMe),
}

var exportCmd = &cobra.Command{
	Use:   "export <asset-id>",
	Short: "Record an export license on an asset",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runExport),
}

func init() {
	generateCmd.Flags().StringP("type", "t", "", "Generator type (logo, avatar, architecture, product, ui_mockup, tattoo)")
	generateCmd.Flags().StringP("prompt", "p", "", "Prompt text")
	generateCmd.Flags().IntP("count", "n", 0, "Number of drafts (default 4)")
	generateCmd.Flags().String("save-to", "", "Save the drafts to this project ID")
	generateCmd.Flags().String("new-project", "", "Save the drafts to a new project with this name")
	_ = generateCmd.MarkFlagRequired("type")
	_ = generateCmd.MarkFlagRequired("prompt")
	generateCmd.MarkFlagsMutuallyExclusive("save-to", "new-project")

	assetsCmd.Flags().String("project", "", "Only assets of this project")
	assetsCmd.Flags().String("search", "", "Case-insensitive prompt substring")
	assetsCmd.Flags().String("type", "all", "all, favorites or a generator type")

	exportCmd.Flags().String("license", models.LicensePersonal, "personal, commercial or extended")
	exportCmd.Flags().String("format", models.FormatPNG, "png or jpg")
}

func runGenerate(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
	generatorType, _ := cmd.Flags().GetString("type")
	prompt, _ := cmd.Flags().GetString("prompt")
	count, _ := cmd.Flags().GetInt("count")
	saveTo, _ := cmd.Flags().GetString("save-to")
	newProject, _ := cmd.Flags().GetString("new-project")

	batch, err := a.Studio.Generate(ctx, models.GenerateRequest{
		GeneratorType: generatorType,
		Prompt:        prompt,
		Count:         count,
	})
	if err != nil {
		return err
	}
	if batch.Fallbacks > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d drafts are placeholders\n", batch.Fallbacks, len(batch.Drafts))
	}

	if saveTo == "" && newProject == "" {
		return printJSON(cmd.OutOrStdout(), batch)
	}
	saved, err := a.Studio.SaveToProject(ctx, models.SaveRequest{
		ProjectID:      saveTo,
		NewProjectName: newProject,
		Drafts:         batch.Drafts,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), saved)
}

func runAssets(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
	projectID, _ := cmd.Flags().GetString("project")
	search, _ := cmd.Flags().GetString("search")
	typ, _ := cmd.Flags().GetString("type")

	assets, err := a.Studio.Library(ctx, models.LibraryQuery{ProjectID: projectID, Search: search, Type: typ})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), assets)
}

func runProjects(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
	projects, err := a.Studio.Projects(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), projects)
}

func runMe(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
	me, err := a.Store.Profiles.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), me)
}

func runExport(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error {
	license, _ := cmd.Flags().GetString("license")
	format, _ := cmd.Flags().GetString("format")

	result, err := a.Studio.Export(ctx, args[0], models.ExportRequest{License: license, Format: format})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}
