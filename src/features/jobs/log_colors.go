package jobs

import (
	"fmt"
	"strings"
)

// ParseAndColorLogContent parses log lines and adds HTML color spans based on log level
func ParseAndColorLogContent(content string) string {
	lines := strings.Split(content, "\n")
	coloredLines := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		coloredLine := line

		switch extractLogLevel(line) {
		case "ERROR":
			coloredLine = fmt.Sprintf(`<span class="log-error">%s</span>`, line)
		case "WARN", "WARNING":
			coloredLine = fmt.Sprintf(`<span class="log-warning">%s</span>`, line)
		case "INFO":
			if strings.Contains(line, `color=green`) {
				coloredLine = fmt.Sprintf(`<span class="log-green">%s</span>`, line)
			}
			// Other INFO logs remain white (no span)
		}
		coloredLines = append(coloredLines, coloredLine)
	}

	return strings.Join(coloredLines, "\n")
}

// extractLogLevel extracts the log level from a log line
func extractLogLevel(line string) string {
	// Look for "level=LEVEL" pattern
	if idx := strings.Index(line, "level="); idx != -1 {
		start := idx + 6
		end := strings.Index(line[start:], " ")
		if end == -1 {
			end = len(line[start:])
		}
		return strings.ToUpper(line[start : start+end])
	}
	return ""
}
