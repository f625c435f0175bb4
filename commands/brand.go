package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	brandColor string

	brandCmd = &cobra.Command{
		Use:   "brand",
		Short: "Manage brands (top-level client groupings)",
	}

	brandAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Create a brand",
		Args:  cobra.ExactArgs(1),
		RunE:  runBrandAdd,
	}

	brandListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all brands",
		RunE:  runBrandList,
	}

	brandDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a brand, its projects and their rules",
		Args:  cobra.ExactArgs(1),
		RunE:  runBrandDelete,
	}

	brandMergeCmd = &cobra.Command{
		Use:   "merge <source-id> <target-id>",
		Short: "Move all projects from one brand into another and delete the source",
		Args:  cobra.ExactArgs(2),
		RunE:  runBrandMerge,
	}
)

func init() {
	brandAddCmd.Flags().StringVar(&brandColor, "color", "", "Display color (hex)")
	brandCmd.AddCommand(brandAddCmd, brandListCmd, brandDeleteCmd, brandMergeCmd)
	rootCmd.AddCommand(brandCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%s'", arg)
	}
	return id, nil
}

func runBrandAdd(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	brand, err := db.InsertBrand(args[0], brandColor)
	if err != nil {
		return err
	}
	fmt.Printf("Created brand %d: %s\n", brand.ID, brand.Name)
	return nil
}

func runBrandList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	brands, err := db.AllBrands()
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatBrands(brands)
}

func runBrandDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteBrand(id); err != nil {
		return err
	}
	fmt.Printf("Deleted brand %d\n", id)
	return nil
}

func runBrandMerge(cmd *cobra.Command, args []string) error {
	sourceID, err := parseID(args[0])
	if err != nil {
		return err
	}
	targetID, err := parseID(args[1])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MergeBrand(sourceID, targetID); err != nil {
		return err
	}
	fmt.Printf("Merged brand %d into %d\n", sourceID, targetID)
	return nil
}
