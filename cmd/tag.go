package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapcrowd/bundlework/internal/logger"
	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/internal/ui"
	"github.com/mapcrowd/bundlework/models"
)

// tagCmd groups the tag subcommands.
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and tag associations",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("tag list")

		tagType, _ := cmd.Flags().GetString("type")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := a.store.ListTags(tagType)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println(ui.StyleSubtle.Render("no tags yet"))
			return nil
		}
		for _, t := range rows {
			line := fmt.Sprintf("%s %s", ui.StyleSubtle.Render(fmt.Sprintf("#%d", t.ID)), ui.StyleTitle.Render(t.Name))
			if t.Description != "" {
				line += "  " + ui.StyleSubtle.Render(t.Description)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var tagApplyCmd = &cobra.Command{
	Use:   "apply <task-id>",
	Short: "Attach tags to a task",
	Long: `Attach tags to a task. References may be tag ids or names,
comma-separated; unknown names are created. By default new tags merge
with the task's existing ones; --replace swaps the full set instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("tag apply")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}
		raw, _ := cmd.Flags().GetString("tags")
		replace, _ := cmd.Flags().GetBool("replace")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.store.GetTask(taskID); err != nil {
			return err
		}

		refs := models.ParseTagRefs(raw)
		ids, err := a.tags.Resolve(refs, models.TagTypeTasks)
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}

		mode := tags.Merge
		if replace {
			mode = tags.Replace
		}
		assoc := tags.NewAssociationManager(a.store, a.store)
		if err := assoc.Associate(actorID, models.ItemTypeTask, taskID, ids, mode); err != nil {
			return fmt.Errorf("apply tags: %w", err)
		}

		fmt.Printf("Applied %d tags to task %d\n", len(ids), taskID)
		return nil
	},
}

func init() {
	tagListCmd.Flags().String("type", models.TagTypeTasks, "tag type (tasks or challenges)")

	tagApplyCmd.Flags().String("tags", "", "comma-separated tag names or ids (required)")
	_ = tagApplyCmd.MarkFlagRequired("tags")
	tagApplyCmd.Flags().Bool("replace", false, "replace the task's tag set instead of merging")

	tagCmd.AddCommand(tagListCmd, tagApplyCmd)
	rootCmd.AddCommand(tagCmd)
}
