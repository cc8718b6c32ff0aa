package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapcrowd/bundlework/internal/logger"
	"github.com/mapcrowd/bundlework/internal/ui"
	"github.com/mapcrowd/bundlework/internal/workflow"
	"github.com/mapcrowd/bundlework/models"
)

// reviewCmd applies a review verdict to a task or a whole bundle.
var reviewCmd = &cobra.Command{
	Use:   "review <verdict>",
	Short: "Review fixed tasks",
	Long: `Apply a review verdict (approved, rejected, assisted, disputed,
unnecessary, or a numeric code) to a task or to every task in a bundle.

Pass --revise-status to correct the underlying task status in the same
operation; the original editor's score is rolled back and re-credited
against the corrected status. Tags given with --tags use create-or-reuse
semantics; on a bundle review they attach to the bundle itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("review")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		verdict, err := models.ParseReviewStatus(args[0])
		if err != nil {
			return err
		}

		opts := workflow.ReviewOptions{}
		opts.Comment, _ = cmd.Flags().GetString("comment")
		opts.Tags, _ = cmd.Flags().GetString("tags")
		if revise, _ := cmd.Flags().GetString("revise-status"); revise != "" {
			status, err := models.ParseTaskStatus(revise)
			if err != nil {
				return err
			}
			opts.NewTaskStatus = &status
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if bundleFlag, _ := cmd.Flags().GetInt64("bundle"); bundleFlag > 0 {
			b, err := a.bundles.SetBundleTaskReviewStatus(actorID, bundleFlag, verdict, opts)
			if err != nil {
				return fmt.Errorf("review bundle: %w", err)
			}
			fmt.Print(ui.RenderBundle(b))
			return nil
		}

		rawTask, _ := cmd.Flags().GetString("task")
		taskID, err := strconv.ParseInt(rawTask, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", rawTask)
		}
		task, err := a.store.GetTask(taskID)
		if err != nil {
			return err
		}
		out, err := a.review.SetReviewStatus([]models.Task{*task}, verdict, actorID, opts)
		if err != nil {
			return fmt.Errorf("review task: %w", err)
		}
		fmt.Println(ui.RenderTaskLine(out[0]))
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("task", "", "task id to review")
	reviewCmd.Flags().Int64("bundle", 0, "bundle id to review (reviews every member)")
	reviewCmd.Flags().String("comment", "", "reviewer comment attached to each task")
	reviewCmd.Flags().String("tags", "", "comma-separated tag names or ids")
	reviewCmd.Flags().String("revise-status", "", "corrected task status applied before the verdict")
	reviewCmd.MarkFlagsOneRequired("task", "bundle")
	reviewCmd.MarkFlagsMutuallyExclusive("task", "bundle")

	rootCmd.AddCommand(reviewCmd)
}
