package commands

import (
	"fmt"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/rules"
	"github.com/penwyp/go-focus-monitor/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	acceptBrand     string
	acceptProject   string
	acceptProjectID int64

	suggestCmd = &cobra.Command{
		Use:   "suggest",
		Short: "Propose project groupings from unassigned activity",
		RunE:  runSuggest,
	}

	suggestAcceptCmd = &cobra.Command{
		Use:   "accept <token>",
		Short: "Turn a suggestion into a brand/project with its rules",
		Long: `Accept the detected grouping identified by token: create or reuse the
target brand and project (or use --project-id for an existing project),
insert the suggested rules, and assign the matching unassigned
activities.`,
		Args: cobra.ExactArgs(1),
		RunE: runSuggestAccept,
	}

	suggestDismissCmd = &cobra.Command{
		Use:   "dismiss <token>",
		Short: "Suppress a suggestion without touching any data",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuggestDismiss,
	}
)

func init() {
	suggestAcceptCmd.Flags().StringVar(&acceptBrand, "brand", "",
		"Brand name to create or reuse (default: the detected brand name)")
	suggestAcceptCmd.Flags().StringVar(&acceptProject, "name", "",
		"Project name to create or reuse (default: the detected project name)")
	suggestAcceptCmd.Flags().Int64Var(&acceptProjectID, "project-id", 0,
		"Existing project id to attach the rules to instead")

	suggestCmd.AddCommand(suggestAcceptCmd, suggestDismissCmd)
	rootCmd.AddCommand(suggestCmd)
}

func newSuggestEngine() (*suggest.Engine, func(), error) {
	db, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	engine := suggest.NewEngine(db, rules.NewEngine(db))
	return engine, func() { db.Close() }, nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	engine, closeStore, err := newSuggestEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	brands, err := engine.Detect()
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatSuggestions(brands)
}

// findSuggestion locates the detected project carrying token.
func findSuggestion(brands []model.DetectedBrand, token string) (*model.DetectedBrand, *model.DetectedProject) {
	for i := range brands {
		for j := range brands[i].Projects {
			if brands[i].Projects[j].Token == token {
				return &brands[i], &brands[i].Projects[j]
			}
		}
	}
	return nil, nil
}

func runSuggestAccept(cmd *cobra.Command, args []string) error {
	token := args[0]

	engine, closeStore, err := newSuggestEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	detected, err := engine.Detect()
	if err != nil {
		return err
	}
	brand, project := findSuggestion(detected, token)
	if project == nil {
		return fmt.Errorf("no current suggestion with token %q", token)
	}

	var count int
	if acceptProjectID != 0 {
		count, err = engine.AcceptInto(acceptProjectID, project.Rules)
	} else {
		brandName := acceptBrand
		if brandName == "" {
			brandName = brand.Name
		}
		projectName := acceptProject
		if projectName == "" {
			projectName = project.Name
		}
		count, err = engine.Accept(brandName, projectName, project.Rules)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Accepted %q: %d activities assigned\n", token, count)
	return nil
}

func runSuggestDismiss(cmd *cobra.Command, args []string) error {
	engine, closeStore, err := newSuggestEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := engine.Dismiss(args[0]); err != nil {
		return err
	}
	fmt.Printf("Dismissed %q\n", args[0])
	return nil
}
