package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapcrowd/bundlework/internal/logger"
	"github.com/mapcrowd/bundlework/internal/ui"
)

// scoreCmd shows a user's accumulated points.
var scoreCmd = &cobra.Command{
	Use:   "score [user-id]",
	Short: "Show a user's score",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("score")

		var userID int64
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			userID = id
		} else {
			id, err := requireActor()
			if err != nil {
				return err
			}
			userID = id
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		points, err := a.store.Points(userID)
		if err != nil {
			return fmt.Errorf("read score: %w", err)
		}
		fmt.Printf("%s %s\n",
			ui.StyleSubtle.Render(fmt.Sprintf("user %d:", userID)),
			ui.StyleTitle.Render(fmt.Sprintf("%d points", points)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
