package bundle

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/mapcrowd/bundlework/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9-]`)

// FormatReport renders a bundle and its member tasks as markdown.
func FormatReport(b *models.TaskBundle) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("# Bundle %d: %s\n\n", b.ID, b.Name))
	buf.WriteString(fmt.Sprintf("Owner: %d\n", b.OwnerID))
	if b.PrimaryTaskID != nil {
		buf.WriteString(fmt.Sprintf("Primary task: %d\n", *b.PrimaryTaskID))
	}
	buf.WriteString(fmt.Sprintf("Members: %d\n\n", len(b.TaskIDs)))

	buf.WriteString("| Task | Name | Status | Review | Meta-review |\n")
	buf.WriteString("|------|------|--------|--------|-------------|\n")
	for _, t := range b.Tasks {
		review := "-"
		if t.ReviewStatus != nil {
			review = t.ReviewStatus.String()
		}
		meta := "-"
		if t.MetaReviewStatus != nil {
			meta = t.MetaReviewStatus.String()
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n", t.ID, t.Name, t.Status, review, meta))
	}

	return buf.String()
}

// ExportReport writes the bundle report to customPath, or to a generated
// slug-named file under exportsDir when customPath is empty. Returns the
// path written.
func ExportReport(fs afero.Fs, b *models.TaskBundle, exportsDir, customPath string) (string, error) {
	content := FormatReport(b)

	finalPath := customPath
	if finalPath == "" {
		slug := strings.ToLower(strings.ReplaceAll(b.Name, " ", "-"))
		slug = slugPattern.ReplaceAllString(slug, "")
		if len(slug) > 50 {
			slug = slug[:50]
		}
		finalPath = filepath.Join(exportsDir, fmt.Sprintf("bundle-%d-%s.md", b.ID, slug))
	}

	if err := fs.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := afero.WriteFile(fs, finalPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write bundle report: %w", err)
	}
	return finalPath, nil
}
