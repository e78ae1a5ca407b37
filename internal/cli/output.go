// output.go holds the shared human-readable output helpers: colored
// status markers and formatters for check results and container tables.
// JSON output paths bypass these and marshal the domain types directly.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// Status markers. color degrades to plain text automatically when
// stdout is not a terminal.
var (
	okMark   = color.New(color.FgGreen, color.Bold).Sprint("✓")
	warnMark = color.New(color.FgYellow, color.Bold).Sprint("⚠")
	failMark = color.New(color.FgRed, color.Bold).Sprint("✗")

	headerColor = color.New(color.FgCyan, color.Bold)
)

// stepOK prints a green-checked progress line.
func stepOK(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", okMark, fmt.Sprintf(format, args...))
}

// stepWarn prints a yellow warning line. Warnings never affect the exit
// code.
func stepWarn(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", warnMark, fmt.Sprintf(format, args...))
}

// stepFail prints a red failure line. The caller still returns the
// error; this only makes the failing step visible in the transcript.
func stepFail(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", failMark, fmt.Sprintf(format, args...))
}

// sectionHeader prints a cyan section title for the phases of a deploy.
func sectionHeader(title string) {
	fmt.Println()
	headerColor.Println(title)
}

// FormatCheckLine renders one preflight check result as a marker plus
// name plus detail, e.g. "✓ docker: /usr/bin/docker".
func FormatCheckLine(res model.CheckResult) string {
	mark := failMark
	switch res.Status {
	case model.CheckOK:
		mark = okMark
	case model.CheckInstalled:
		mark = okMark
	case model.CheckSkipped:
		mark = warnMark
	}

	line := fmt.Sprintf("%s %s: %s", mark, res.Name, res.Status)
	if res.Detail != "" {
		line += " (" + res.Detail + ")"
	}
	return line
}

// printCheckResults renders all check results, one per line.
func printCheckResults(results []model.CheckResult) {
	for _, res := range results {
		fmt.Println(FormatCheckLine(res))
	}
}

// FormatContainerTable renders stack containers as a fixed-width table.
// Returns "" for an empty slice; the caller decides what "no containers"
// should say in its own context.
func FormatContainerTable(containers []model.ServiceContainer) string {
	if len(containers) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-16s %-12s %s\n", "NAME", "SERVICE", "STATE", "STATUS"))
	for _, c := range containers {
		sb.WriteString(fmt.Sprintf("%-24s %-16s %-12s %s\n", c.Name, c.Service, c.State, c.Status))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatStackStateLine renders the aggregate stack state with a marker
// matching its severity.
func FormatStackStateLine(project string, state model.StackState) string {
	mark := failMark
	switch state {
	case model.StackRunning:
		mark = okMark
	case model.StackPartial:
		mark = warnMark
	}
	return fmt.Sprintf("%s stack %q is %s", mark, project, state)
}
