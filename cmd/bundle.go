package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mapcrowd/bundlework/internal/bundle"
	"github.com/mapcrowd/bundlework/internal/logger"
	"github.com/mapcrowd/bundlework/internal/ui"
	"github.com/mapcrowd/bundlework/internal/workflow"
	"github.com/mapcrowd/bundlework/models"
)

// bundleCmd groups the bundle subcommands.
var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Group tasks into bundles that move through the workflow together",
}

var bundleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a bundle from tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle create")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		rawIDs, _ := cmd.Flags().GetString("tasks")
		taskIDs, err := parseIDList(rawIDs)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.bundles.Create(actorID, args[0], taskIDs)
		if err != nil {
			return fmt.Errorf("create bundle: %w", err)
		}
		fmt.Print(ui.RenderBundle(b))
		return nil
	},
}

var bundleShowCmd = &cobra.Command{
	Use:   "show <bundle-id>",
	Short: "Show a bundle and its member tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle show")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		bundleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bundle id %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.bundles.Get(actorID, bundleID)
		if err != nil {
			return err
		}
		fmt.Print(ui.RenderBundle(b))
		return nil
	},
}

var bundleStatusCmd = &cobra.Command{
	Use:   "status <bundle-id> <primary-task-id> <status>",
	Short: "Set the status of every task in a bundle",
	Long: `Set the status of every task in a bundle in one operation.

The primary task is the member the edit was made against; the other
members ride along. Scores are credited once per member task.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle status")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		bundleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bundle id %q", args[0])
		}
		primaryTaskID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid primary task id %q", args[1])
		}
		status, err := models.ParseTaskStatus(args[2])
		if err != nil {
			return err
		}
		requestReview, _ := cmd.Flags().GetBool("request-review")
		completion, _ := cmd.Flags().GetString("completion")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.bundles.SetBundleTaskStatus(actorID, bundleID, primaryTaskID, status, workflow.StatusOptions{
			RequestReview: requestReview,
			Completion:    completion,
		})
		if err != nil {
			return fmt.Errorf("set bundle status: %w", err)
		}
		fmt.Print(ui.RenderBundle(b))
		return nil
	},
}

var bundleUnbundleCmd = &cobra.Command{
	Use:   "unbundle <bundle-id>",
	Short: "Remove tasks from a bundle",
	Long: `Remove tasks from a bundle and release their claims.

Removing the last member deletes the bundle itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle unbundle")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		bundleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bundle id %q", args[0])
		}
		rawIDs, _ := cmd.Flags().GetString("tasks")
		taskIDs, err := parseIDList(rawIDs)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.bundles.UnbundleTasks(actorID, bundleID, taskIDs)
		if err != nil {
			return fmt.Errorf("unbundle: %w", err)
		}
		if b == nil {
			fmt.Println(ui.StyleSubtle.Render("bundle emptied and deleted"))
			return nil
		}
		fmt.Print(ui.RenderBundle(b))
		return nil
	},
}

var bundleDeleteCmd = &cobra.Command{
	Use:   "delete <bundle-id>",
	Short: "Delete a bundle",
	Long: `Delete a bundle and release the members' claims.

Pass --keep-primary to keep the claim on one task, handing it off as
standalone work.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle delete")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		bundleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bundle id %q", args[0])
		}

		var primaryTaskID *int64
		if keep, _ := cmd.Flags().GetInt64("keep-primary"); keep > 0 {
			primaryTaskID = &keep
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.bundles.Delete(actorID, bundleID, primaryTaskID); err != nil {
			return fmt.Errorf("delete bundle: %w", err)
		}
		fmt.Printf("Deleted bundle %d\n", bundleID)
		return nil
	},
}

var bundleExportCmd = &cobra.Command{
	Use:   "export <bundle-id>",
	Short: "Write a markdown report of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("bundle export")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		bundleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bundle id %q", args[0])
		}
		customPath, _ := cmd.Flags().GetString("output")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.bundles.Get(actorID, bundleID)
		if err != nil {
			return err
		}
		path, err := bundle.ExportReport(afero.NewOsFs(), b, GetExportsDir(), customPath)
		if err != nil {
			return fmt.Errorf("export bundle: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// parseIDList parses a comma-separated list of numeric ids.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	bundleCreateCmd.Flags().String("tasks", "", "comma-separated task ids (required)")
	_ = bundleCreateCmd.MarkFlagRequired("tasks")

	bundleStatusCmd.Flags().Bool("request-review", false, "also request a review of every member")
	bundleStatusCmd.Flags().String("completion", "", "completion mode recorded on the actions")

	bundleUnbundleCmd.Flags().String("tasks", "", "comma-separated task ids to remove (required)")
	_ = bundleUnbundleCmd.MarkFlagRequired("tasks")

	bundleDeleteCmd.Flags().Int64("keep-primary", 0, "task id whose claim survives the delete")

	bundleCmd.AddCommand(bundleCreateCmd, bundleShowCmd, bundleStatusCmd, bundleUnbundleCmd, bundleDeleteCmd, bundleExportCmd)
	rootCmd.AddCommand(bundleCmd)
}
