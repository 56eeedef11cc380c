package host

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// GitHub implements Host using the GitHub Actions runner contract:
// INPUT_* environment variables for inputs, the GITHUB_OUTPUT file for
// outputs, and workflow commands on stdout for masking and errors.
type GitHub struct {
	commands io.Writer
}

var _ Host = (*GitHub)(nil)

// NewGitHub creates a Host bound to the current runner environment
func NewGitHub() *GitHub {
	return &GitHub{commands: os.Stdout}
}

// Input reads an action input from its INPUT_* environment variable.
// Names are normalized the way the runner does: spaces and dashes become
// underscores, then the whole name is uppercased.
func (g *GitHub) Input(name string) string {
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	return strings.TrimSpace(os.Getenv("INPUT_" + strings.ToUpper(name)))
}

// SetOutput appends a name/value pair to the GITHUB_OUTPUT file using
// the heredoc form, which is safe for multiline values.
func (g *GitHub) SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return fmt.Errorf("GITHUB_OUTPUT is not set")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("output value must not contain the delimiter %q", delimiter)
	}

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter); err != nil {
		return fmt.Errorf("failed to write output %s: %w", name, err)
	}
	return nil
}

// MaskSecret registers a value with the runner's log masking
func (g *GitHub) MaskSecret(value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(g.commands, "::add-mask::%s\n", escapeData(value))
}

// Errorf reports a failure through the error workflow command
func (g *GitHub) Errorf(format string, args ...any) {
	fmt.Fprintf(g.commands, "::error::%s\n", escapeData(fmt.Sprintf(format, args...)))
}

// escapeData escapes a workflow command payload per the runner's rules
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
