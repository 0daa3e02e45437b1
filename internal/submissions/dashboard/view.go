package dashboard

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

const (
	LinkDisplayLength = 30
	DateLayout        = "Jan 2, 2006, 03:04 PM"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes s safe to place in HTML text or attribute values.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// TruncateLink shortens s to max runes followed by "...".
func TruncateLink(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// Counts summarizes a listing by review status.
type Counts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// CountStatuses tallies subs. Rows with an unknown status count toward Total only.
func CountStatuses(subs []domain.Submission) Counts {
	c := Counts{Total: len(subs)}
	for _, s := range subs {
		switch normalizeStatus(s.Status) {
		case domain.StatusPending:
			c.Pending++
		case domain.StatusApproved:
			c.Approved++
		case domain.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

// Row is one display-ready listing entry. Every text field is already escaped.
type Row struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Purpose      string    `json:"purpose"`
	PlatformLink string    `json:"platform_link"`
	LinkText     string    `json:"link_text"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	StatusClass  string    `json:"status_class"`
	StatusIcon   string    `json:"status_icon"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// View is the whole dashboard state. Each refresh replaces it entirely.
type View struct {
	Rows        []Row     `json:"rows"`
	Counts      Counts    `json:"counts"`
	Empty       bool      `json:"empty"`
	Loading     bool      `json:"loading"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// BuildView turns rows (already newest first) into the view-model.
func BuildView(subs []domain.Submission, loc *time.Location, now time.Time) *View {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, buildRow(s, loc))
	}
	return &View{
		Rows:        rows,
		Counts:      CountStatuses(subs),
		Empty:       len(rows) == 0,
		Loading:     false,
		RefreshedAt: now,
	}
}

func buildRow(s domain.Submission, loc *time.Location) Row {
	status := normalizeStatus(s.Status)
	class, icon := statusStyle(status)
	return Row{
		ID:           s.ID,
		Name:         Escape(s.Name),
		Email:        Escape(s.Email),
		Purpose:      Escape(s.Purpose),
		PlatformLink: Escape(s.PlatformLink),
		LinkText:     Escape(TruncateLink(s.PlatformLink, LinkDisplayLength)),
		Status:       string(status),
		StatusLabel:  capitalize(string(status)),
		StatusClass:  class,
		StatusIcon:   icon,
		Date:         s.CreatedAt.In(loc).Format(DateLayout),
		CreatedAt:    s.CreatedAt,
	}
}

func normalizeStatus(s domain.Status) domain.Status {
	if s == "" {
		return domain.StatusPending
	}
	return domain.Status(strings.ToLower(string(s)))
}

func statusStyle(s domain.Status) (class, icon string) {
	switch s {
	case domain.StatusApproved:
		return "status-approved", "fa-check-circle"
	case domain.StatusRejected:
		return "status-rejected", "fa-times-circle"
	default:
		return "status-pending", "fa-clock"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
