package commands

import (
	"fmt"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/rules"
	"github.com/spf13/cobra"
)

var (
	classifyDate      string
	classifyIDs       []int64
	classifyProjectID int64
	classifyRuleType  string
	classifyPattern   string

	classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Assign activities to projects",
		Long: `Without flags, runs one rule-matching pass over all unassigned
activities and reports how many were assigned.

With --ids and --project, assigns those activities directly, bypassing
matching; add --type and --pattern to also create a rule so future
matching activities classify automatically.`,
		RunE: runClassify,
	}
)

func init() {
	classifyCmd.Flags().StringVar(&classifyDate, "date", "",
		"Restrict auto-assignment to one date (YYYY-MM-DD)")
	classifyCmd.Flags().Int64SliceVar(&classifyIDs, "ids", nil,
		"Activity ids to assign manually")
	classifyCmd.Flags().Int64Var(&classifyProjectID, "project", 0,
		"Target project id for manual assignment")
	classifyCmd.Flags().StringVar(&classifyRuleType, "type", "",
		"Rule type for the optional new rule")
	classifyCmd.Flags().StringVar(&classifyPattern, "pattern", "",
		"Pattern for the optional new rule")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := rules.NewEngine(db)

	if len(classifyIDs) > 0 {
		if classifyProjectID == 0 {
			return fmt.Errorf("--ids requires --project")
		}
		var newRule *model.ProjectRule
		if classifyRuleType != "" || classifyPattern != "" {
			newRule = &model.ProjectRule{
				RuleType: model.RuleType(classifyRuleType),
				Pattern:  classifyPattern,
				Priority: 100,
			}
		}
		if err := engine.Classify(classifyIDs, classifyProjectID, newRule); err != nil {
			return err
		}
		fmt.Printf("Assigned %d activities to project %d\n", len(classifyIDs), classifyProjectID)
		return nil
	}

	count, err := engine.AutoAssignUnclassified(classifyDate)
	if err != nil {
		return err
	}
	fmt.Printf("Auto-assigned %d activities\n", count)
	return nil
}
