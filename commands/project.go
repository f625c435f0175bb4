package commands

import (
	"fmt"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/spf13/cobra"
)

var (
	projectBrand string
	projectColor string

	projectCmd = &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	projectAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project under a brand",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectAdd,
	}

	projectListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE:  runProjectList,
	}

	projectDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its rules",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectDelete,
	}
)

func init() {
	projectAddCmd.Flags().StringVar(&projectBrand, "brand", "", "Owning brand name (required)")
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "Display color (hex)")
	projectAddCmd.MarkFlagRequired("brand")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	brand, err := db.GetBrandByName(projectBrand)
	if err != nil {
		return err
	}
	project, err := db.InsertProject(brand.ID, args[0], projectColor)
	if err != nil {
		return err
	}
	fmt.Printf("Created project %d: %s (brand %s)\n", project.ID, project.Name, brand.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := db.AllProjects()
	if err != nil {
		return err
	}
	brands, err := db.AllBrands()
	if err != nil {
		return err
	}
	brandNames := make(map[int64]string, len(brands))
	for _, brand := range brands {
		brandNames[brand.ID] = brand.Name
	}

	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatProjectList(projects, brandNames)
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteProject(id); err != nil {
		return err
	}
	fmt.Printf("Deleted project %d\n", id)
	return nil
}

// ruleTypeNames lists the accepted --type values for help output.
func ruleTypeNames() []string {
	return []string{
		string(model.RuleTerminalFolder),
		string(model.RuleURLDomain),
		string(model.RuleURLPath),
		string(model.RulePageTitle),
		string(model.RuleDesignFile),
		string(model.RuleBundleID),
		string(model.RuleWindowTitle),
	}
}
