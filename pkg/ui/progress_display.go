package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"canvasdl/pkg/canvas"
	"canvasdl/pkg/mirror"
)

// StatusReporter prints live status lines as courses are mirrored. In
// verbose mode every file gets its own line; otherwise a single progress
// line per course is rewritten in place.
type StatusReporter struct {
	mu        sync.Mutex
	w         io.Writer
	verbose   bool
	startTime time.Time

	course      string
	courseStart time.Time
	counts      mirror.Stats
	problems    int
	lineOpen    bool
}

// NewStatusReporter creates a reporter writing to w, or to the terminal
// output when w is nil
func NewStatusReporter(w io.Writer, verbose bool) *StatusReporter {
	if w == nil {
		w = Output()
	}
	return &StatusReporter{
		w:         w,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

var _ mirror.Reporter = (*StatusReporter)(nil)

// CourseStarted opens a new status block for course
func (s *StatusReporter) CourseStarted(course canvas.Course, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.course = name
	s.courseStart = time.Now()
	s.counts = mirror.Stats{}
	s.problems = 0
	if IsQuietMode() {
		return
	}
	s.endLine()
	fmt.Fprintf(s.w, "%s %s\n", Magenta("→"), Cyan(name))
}

// CourseSkipped notes a course that is not walked
func (s *StatusReporter) CourseSkipped(course canvas.Course, reason mirror.SkipReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsQuietMode() || !s.verbose {
		return
	}
	s.endLine()
	fmt.Fprintf(s.w, "%s course %d %s\n", Dim("•"), course.ID, Dim(string(reason)))
}

// CourseFinished closes the status block with the course totals
func (s *StatusReporter) CourseFinished(course canvas.Course, stats mirror.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsQuietMode() {
		return
	}
	s.endLine()
	line := fmt.Sprintf("  %s %d downloaded • %d skipped • %s • %s",
		Green("✓"),
		stats.Downloaded,
		stats.Skipped(),
		formatBytes(stats.Bytes),
		formatDuration(time.Since(s.courseStart)),
	)
	if stats.Failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", stats.Failed))
	}
	fmt.Fprintln(s.w, line)
}

// FileFinished updates the live line, or prints the file in verbose mode.
// Failures are always printed.
func (s *StatusReporter) FileFinished(course canvas.Course, result mirror.FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Record(result)

	if result.Outcome == mirror.OutcomeFailed {
		s.endLine()
		fmt.Fprintf(s.w, "  %s %s: %v\n", Red("✗"), displayName(result), result.Err)
		return
	}
	if IsQuietMode() {
		return
	}

	if s.verbose {
		fmt.Fprintf(s.w, "  %s %s %s\n", outcomeMark(result.Outcome), displayName(result), Dim(string(result.Outcome)))
		return
	}
	s.printProgress(result)
}

// Problem prints a non-fatal failure
func (s *StatusReporter) Problem(course canvas.Course, what string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.problems++
	s.endLine()
	fmt.Fprintf(s.w, "  %s could not %s: %v\n", Yellow("⚠"), what, err)
}

// printProgress rewrites the live status line
func (s *StatusReporter) printProgress(last mirror.FileResult) {
	line := fmt.Sprintf("  %d downloaded • %d skipped • %s",
		s.counts.Downloaded,
		s.counts.Skipped(),
		formatBytes(s.counts.Bytes),
	)
	if name := displayName(last); name != "" {
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		line += " • " + Dim(name)
	}
	fmt.Fprintf(s.w, "\r%s\r%s", strings.Repeat(" ", 100), line)
	s.lineOpen = true
}

// endLine terminates a pending live line
func (s *StatusReporter) endLine() {
	if s.lineOpen {
		fmt.Fprintln(s.w)
		s.lineOpen = false
	}
}

// Complete prints the run summary
func (s *StatusReporter) Complete(summary *mirror.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endLine()
	PrintSummary(s.w, summary, time.Since(s.startTime))
}

// PrintSummary writes a boxed summary of a run
func PrintSummary(w io.Writer, summary *mirror.Summary, elapsed time.Duration) {
	if summary == nil {
		return
	}
	files := summary.Files

	var b strings.Builder
	if summary.UserName != "" {
		fmt.Fprintf(&b, "%s %s\n", Cyan("User:"), summary.UserName)
	}
	fmt.Fprintf(&b, "%s %d mirrored, %d already done, %d unavailable",
		Cyan("Courses:"),
		summary.CoursesProcessed,
		summary.CoursesSkipped,
		summary.CoursesUnavailable,
	)
	if summary.CoursesFailed > 0 {
		b.WriteString(", " + Red(fmt.Sprintf("%d failed", summary.CoursesFailed)))
	}
	fmt.Fprintf(&b, "\n%s %d downloaded (%s), %d on disk, %d duplicates, %d not eligible",
		Cyan("Files:"),
		files.Downloaded,
		formatBytes(files.Bytes),
		files.Existing,
		files.Duplicates,
		files.Ineligible,
	)
	if files.Failed > 0 {
		b.WriteString(", " + Red(fmt.Sprintf("%d failed", files.Failed)))
	}
	fmt.Fprintf(&b, "\n%s %s", Cyan("Time:"), formatDuration(elapsed))

	fmt.Fprintln(w)
	fmt.Fprintln(w, Panel(b.String()))
}

func displayName(result mirror.FileResult) string {
	if result.Path != "" {
		return filepath.Base(result.Path)
	}
	return result.Name
}

func outcomeMark(outcome mirror.Outcome) string {
	switch outcome {
	case mirror.OutcomeDownloaded:
		return Green("✓")
	case mirror.OutcomeFailed:
		return Red("✗")
	default:
		return Dim("•")
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
