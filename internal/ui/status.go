package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mapcrowd/bundlework/models"
)

// StatusStyle picks a color for a task status.
func StatusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.StatusFixed, models.StatusAlreadyFixed:
		return StyleSuccess
	case models.StatusFalsePositive, models.StatusDeleted, models.StatusDisabled:
		return StyleError
	case models.StatusSkipped, models.StatusTooHard:
		return StyleWarning
	default:
		return StyleSubtle
	}
}

// ReviewStyle picks a color for a review or meta-review status.
func ReviewStyle(s models.ReviewStatus) lipgloss.Style {
	switch s {
	case models.ReviewApproved, models.ReviewAssisted:
		return StyleSuccess
	case models.ReviewRejected, models.ReviewDisputed:
		return StyleError
	case models.ReviewRequested:
		return StyleWarning
	default:
		return StyleSubtle
	}
}

// RenderTaskLine renders one task as a single styled line.
func RenderTaskLine(t models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s",
		StyleSubtle.Render(fmt.Sprintf("#%d", t.ID)),
		StyleTitle.Render(t.Name),
		StatusStyle(t.Status).Render(t.Status.String()))
	if t.ReviewStatus != nil {
		fmt.Fprintf(&b, "  review:%s", ReviewStyle(*t.ReviewStatus).Render(t.ReviewStatus.String()))
	}
	if t.MetaReviewStatus != nil {
		fmt.Fprintf(&b, "  meta:%s", ReviewStyle(*t.MetaReviewStatus).Render(t.MetaReviewStatus.String()))
	}
	return b.String()
}

// RenderBundle renders a bundle header plus one line per member task.
func RenderBundle(b *models.TaskBundle) string {
	var sb strings.Builder
	sb.WriteString(StyleHeader.Render(fmt.Sprintf("Bundle #%d  %s", b.ID, b.Name)))
	sb.WriteString("\n")
	sb.WriteString(StyleSubtle.Render(fmt.Sprintf("owner %d, %d tasks", b.OwnerID, len(b.TaskIDs))))
	if b.PrimaryTaskID != nil {
		sb.WriteString(StyleSubtle.Render(fmt.Sprintf(", primary %d", *b.PrimaryTaskID)))
	}
	sb.WriteString("\n")
	for _, t := range b.Tasks {
		sb.WriteString("  " + RenderTaskLine(t) + "\n")
	}
	return sb.String()
}
