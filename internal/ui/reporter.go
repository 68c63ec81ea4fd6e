package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// ConsoleReporter prints core progress to the terminal.
type ConsoleReporter struct {
	// Markdown renders plans through glamour; otherwise the raw markdown is printed.
	Markdown bool
}

// NewConsoleReporter creates a ConsoleReporter.
func NewConsoleReporter(markdown bool) *ConsoleReporter {
	return &ConsoleReporter{Markdown: markdown}
}

func (r *ConsoleReporter) Info(msg string)    { PrintInfo("%s", msg) }
func (r *ConsoleReporter) Success(msg string) { PrintSuccess("%s", msg) }
func (r *ConsoleReporter) Warning(msg string) { PrintWarning("%s", msg) }
func (r *ConsoleReporter) Error(msg string)   { PrintError("%s", msg) }

// Plan prints the compiled plan.
func (r *ConsoleReporter) Plan(title string, plan *domain.Plan) {
	md := PlanMarkdown(title, plan)
	if r.Markdown {
		if err := PrintMarkdown(md); err == nil {
			return
		}
	}
	fmt.Fprint(Out, md)
}

// Request prints one request as it is sent.
func (r *ConsoleReporter) Request(i, n int, req domain.RemoteRequest) {
	PrintStep(i, n, RequestLine(req))
}

// Ensure ConsoleReporter implements Reporter interface.
var _ domain.Reporter = (*ConsoleReporter)(nil)

// RequestLine formats a request as "METHOD url (version N)".
func RequestLine(req domain.RemoteRequest) string {
	line := req.Method + " " + req.URL
	if v := req.Version(); v > 0 {
		line += fmt.Sprintf(" (version %d)", v)
	}
	return line
}

// PlanMarkdown renders plan as a markdown document, one section per batch.
func PlanMarkdown(title string, plan *domain.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if plan == nil || len(plan.Batches) == 0 {
		b.WriteString("_No changes._\n")
		return b.String()
	}

	for _, batch := range plan.Batches {
		fmt.Fprintf(&b, "## %s\n\n", batch.Intent)
		for _, req := range batch.Requests {
			fmt.Fprintf(&b, "- `%s`\n", RequestLine(req))
		}
		for _, e := range batch.ValidationErrors {
			fmt.Fprintf(&b, "- **Validation error:** %s\n", e.Message)
		}
		for _, e := range batch.RuntimeErrors {
			fmt.Fprintf(&b, "- **Error:** %s\n", e.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ListEntry is one line of the migration list.
type ListEntry struct {
	Title       string
	Description string
	Timestamp   time.Time
}

// FormatListEntry renders "[yyyy-mm-dd HH:MM:SS] title : description",
// with "[pending]" when the migration has not run.
func FormatListEntry(e ListEntry) string {
	when := "[pending]"
	if !e.Timestamp.IsZero() {
		when = "[" + e.Timestamp.Local().Format("2006-01-02 15:04:05") + "]"
	}
	desc := e.Description
	if desc == "" {
		desc = "<No Description>"
	}
	return fmt.Sprintf("%s %s : %s", when, e.Title, desc)
}

// PrintList prints the migration list, colouring pending entries.
func PrintList(entries []ListEntry) {
	for _, e := range entries {
		c := UpColor
		if e.Timestamp.IsZero() {
			c = PendingColor
		}
		ColorPrint(c, "%s\n", FormatListEntry(e))
	}
}
