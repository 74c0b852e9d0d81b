package suggest

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TranscriptArg is the placeholder replaced with the transcript path in the
// generator's argument list. When no argument contains it, the path is
// appended as the final argument.
const TranscriptArg = "{transcript}"

// CommandGenerator invokes an external command and reads its completion from
// an output file. The contract: on success the output file's first line is
// the proposed completion, possibly empty. Non-zero exit, a missing or
// unreadable output file, or anything else is "no suggestion".
type CommandGenerator struct {
	Command    string
	Args       []string
	OutputPath string
	Timeout    time.Duration
	Log        *slog.Logger
}

// Generate runs the command synchronously and returns the first output line.
func (g *CommandGenerator) Generate(ctx context.Context, transcriptPath string) (string, error) {
	if g.Command == "" {
		return "", fmt.Errorf("no generator command configured")
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(g.Args)+1)
	substituted := false
	for _, a := range g.Args {
		if strings.Contains(a, TranscriptArg) {
			a = strings.ReplaceAll(a, TranscriptArg, transcriptPath)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, transcriptPath)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, g.Command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("generator command: %w (output: %s)", err, firstLine(string(output)))
	}
	g.Log.Debug("generator command completed",
		"command", g.Command, "elapsed", time.Since(start))

	f, err := os.Open(g.OutputPath)
	if err != nil {
		return "", fmt.Errorf("generator output: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read generator output: %w", err)
		}
		return "", nil // empty output file: no suggestion
	}
	// Trailing newline only; interior whitespace is part of the completion.
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
