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

// metaReviewCmd applies a second-pass verdict on top of a review.
var metaReviewCmd = &cobra.Command{
	Use:   "meta-review <verdict>",
	Short: "Meta-review already-reviewed tasks",
	Long: `Apply a meta-review verdict to a task or to every task in a bundle.

Meta-review is a second pass over the reviewer's work. It never changes
the task status or the first-pass review; tags always attach to the
individual tasks, bundle or not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("meta-review")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		verdict, err := models.ParseReviewStatus(args[0])
		if err != nil {
			return err
		}

		opts := workflow.MetaReviewOptions{}
		opts.Comment, _ = cmd.Flags().GetString("comment")
		opts.Tags, _ = cmd.Flags().GetString("tags")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if bundleFlag, _ := cmd.Flags().GetInt64("bundle"); bundleFlag > 0 {
			b, err := a.bundles.SetBundleMetaReviewStatus(actorID, bundleFlag, verdict, opts)
			if err != nil {
				return fmt.Errorf("meta-review bundle: %w", err)
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
		out, err := a.review.SetMetaReviewStatus([]models.Task{*task}, verdict, actorID, opts)
		if err != nil {
			return fmt.Errorf("meta-review task: %w", err)
		}
		fmt.Println(ui.RenderTaskLine(out[0]))
		return nil
	},
}

func init() {
	metaReviewCmd.Flags().String("task", "", "task id to meta-review")
	metaReviewCmd.Flags().Int64("bundle", 0, "bundle id to meta-review (covers every member)")
	metaReviewCmd.Flags().String("comment", "", "comment attached to each task")
	metaReviewCmd.Flags().String("tags", "", "comma-separated tag names or ids")
	metaReviewCmd.MarkFlagsOneRequired("task", "bundle")
	metaReviewCmd.MarkFlagsMutuallyExclusive("task", "bundle")

	rootCmd.AddCommand(metaReviewCmd)
}
