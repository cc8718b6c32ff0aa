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

// taskCmd groups the task subcommands.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, list, and update tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("task add")
		logger.SetLastInput(args[0])

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.store.CreateTask(args[0], models.StatusCreated)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		fmt.Println(ui.RenderTaskLine(task))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("task list")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		tasks, err := a.store.ListTasks()
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println(ui.StyleSubtle.Render("no tasks yet"))
			return nil
		}
		for _, t := range tasks {
			fmt.Println(ui.RenderTaskLine(t))
		}
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Set a task's status",
	Long: `Set a task's status and credit the acting user's score.

The status is a name (fixed, false-positive, skipped, deleted,
already-fixed, too-hard, disabled) or its numeric code. Pass
--request-review to start the review workflow at the same time.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("task status")

		actorID, err := requireActor()
		if err != nil {
			return err
		}
		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}
		status, err := models.ParseTaskStatus(args[1])
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

		task, err := a.store.GetTask(taskID)
		if err != nil {
			return err
		}
		if err := a.status.SetStatus([]models.Task{*task}, status, actorID, workflow.StatusOptions{
			RequestReview: requestReview,
			Completion:    completion,
		}); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		updated, err := a.store.GetTask(taskID)
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderTaskLine(*updated))
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its history and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("task show")

		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.store.GetTask(taskID)
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderTaskLine(*task))

		actions, err := a.store.ListActions(models.ItemTypeTask, taskID)
		if err != nil {
			return fmt.Errorf("list actions: %w", err)
		}
		for _, act := range actions {
			fmt.Printf("  %s %s by %d", ui.StyleSubtle.Render(act.ID), act.Kind, act.ActorID)
			if act.Detail != "" {
				fmt.Printf("  %s", ui.StyleSubtle.Render(act.Detail))
			}
			fmt.Println()
		}

		comments, err := a.store.ListComments(taskID)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		for _, c := range comments {
			fmt.Printf("  %s %q by %d\n", ui.StyleSubtle.Render(c.ID), c.Text, c.ActorID)
		}
		return nil
	},
}

func init() {
	taskStatusCmd.Flags().Bool("request-review", false, "also request a review of the task")
	taskStatusCmd.Flags().String("completion", "", "completion mode recorded on the action")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskStatusCmd, taskShowCmd)
	rootCmd.AddCommand(taskCmd)
}
