package commands

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/spf13/cobra"
)

var (
	ruleProjectID int64
	ruleType      string
	rulePattern   string
	ruleRegex     bool
	rulePriority  int

	ruleCmd = &cobra.Command{
		Use:   "rule",
		Short: "Manage classification rules",
	}

	ruleAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Create a classification rule",
		Long: fmt.Sprintf(`Create a rule that auto-assigns matching activities to a project.

Rule types: %s

Lower priority evaluates first; the first matching rule wins.`,
			strings.Join(ruleTypeNames(), ", ")),
		RunE: runRuleAdd,
	}

	ruleListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all rules in evaluation order",
		RunE:  runRuleList,
	}

	ruleDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE:  runRuleDelete,
	}
)

func init() {
	ruleAddCmd.Flags().Int64Var(&ruleProjectID, "project", 0, "Target project id (required)")
	ruleAddCmd.Flags().StringVar(&ruleType, "type", "", "Rule type (required)")
	ruleAddCmd.Flags().StringVar(&rulePattern, "pattern", "", "Pattern to match (required)")
	ruleAddCmd.Flags().BoolVar(&ruleRegex, "regex", false, "Treat the pattern as a regular expression")
	ruleAddCmd.Flags().IntVar(&rulePriority, "priority", 100, "Evaluation priority (lower first)")
	ruleAddCmd.MarkFlagRequired("project")
	ruleAddCmd.MarkFlagRequired("type")
	ruleAddCmd.MarkFlagRequired("pattern")

	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleDeleteCmd)
	rootCmd.AddCommand(ruleCmd)
}

func runRuleAdd(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rule, err := db.InsertRule(model.ProjectRule{
		ProjectID: ruleProjectID,
		RuleType:  model.RuleType(ruleType),
		Pattern:   rulePattern,
		IsRegex:   ruleRegex,
		Priority:  rulePriority,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created rule %d: %s %q -> project %d\n",
		rule.ID, rule.RuleType, rule.Pattern, rule.ProjectID)
	return nil
}

func runRuleList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rules, err := db.LoadAllProjectRules()
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatRules(rules)
}

func runRuleDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRule(id); err != nil {
		return err
	}
	fmt.Printf("Deleted rule %d\n", id)
	return nil
}
