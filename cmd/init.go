package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mapcrowd/bundlework/internal/storage"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bundlework in the current directory",
	Long: `Initialize bundlework project state in the current directory.

This creates the .bundlework directory with:
  - bundlework.db - SQLite database for tasks, bundles, tags, and scores
  - exports/ - bundle reports land here

Run this in your project root before using other bundlework commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataPath := GetDataFilePath()

		// Check if already initialized
		if _, err := os.Stat(dataPath); err == nil {
			fmt.Println("bundlework already initialized in this directory")
			return nil
		}

		// Opening the store creates the directory and schema.
		store, err := storage.New(dataPath)
		if err != nil {
			return fmt.Errorf("initialize data store: %w", err)
		}
		defer store.Close()

		if err := os.MkdirAll(GetExportsDir(), 0o755); err != nil {
			return fmt.Errorf("create exports directory: %w", err)
		}

		gitignorePath := filepath.Join(filepath.Dir(dataPath), ".gitignore")
		gitignoreContent := `# bundlework generated files
*.db
*.db-journal
*.db-wal
*.db-shm
crash_logs/
exports/
`
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); err != nil {
			return fmt.Errorf("write .gitignore: %w", err)
		}

		// Seed a starter config next to the database so the defaults are
		// visible and editable.
		configPath := filepath.Join(filepath.Dir(dataPath), configName+".yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			seed := map[string]any{
				"project": map[string]any{
					"rootDir":    GetConfig().Project.RootDir,
					"exportsDir": GetConfig().Project.ExportsDir,
				},
				"data": map[string]any{
					"file": GetConfig().Data.File,
				},
				"actor": map[string]any{
					"id": GetConfig().Actor.ID,
				},
			}
			out, err := yaml.Marshal(seed)
			if err != nil {
				return fmt.Errorf("render starter config: %w", err)
			}
			if err := os.WriteFile(configPath, out, 0o644); err != nil {
				return fmt.Errorf("write starter config: %w", err)
			}
		}

		fmt.Printf("Initialized bundlework in %s\n", filepath.Dir(dataPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
