package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/crmlite/leadboard/model"
)

const displayTimeFormat = "02.01.2006 15:04"

// formatDate renders a timestamp for display. Storage keeps the raw value;
// formatting happens at render time only.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(displayTimeFormat)
}

func formatPhone(phone string) string {
	if phone == "" {
		return "not provided"
	}
	return phone
}

func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

func shortenID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func newRow(sub model.Submission) Row {
	return Row{
		ID:          sub.SubmissionID,
		ShortID:     shortenID(sub.SubmissionID),
		Name:        sub.Name,
		Initials:    initials(sub.Name),
		Email:       sub.Email,
		Phone:       formatPhone(sub.Phone),
		Date:        formatDate(sub.CreatedAt),
		Status:      sub.Status,
		StatusLabel: sub.Status.Label(),
	}
}

func newDetails(sub model.Submission) Details {
	return Details{
		ID:          sub.SubmissionID,
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       formatPhone(sub.Phone),
		Date:        formatDate(sub.CreatedAt),
		Message:     sub.Message,
		Status:      sub.Status,
		StatusLabel: sub.Status.Label(),
	}
}

func newCommentItem(c model.Comment) CommentItem {
	return CommentItem{
		ID:     c.ID,
		Text:   c.Text,
		Author: c.Author,
		Date:   formatDate(c.CreatedAt),
	}
}
