package suggest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("generator tests use sh")
	}
}

func shellGenerator(t *testing.T, script string) *CommandGenerator {
	t.Helper()
	return &CommandGenerator{
		Command:    "sh",
		Args:       []string{"-c", script},
		OutputPath: filepath.Join(t.TempDir(), "suggestion.txt"),
		Timeout:    5 * time.Second,
		Log:        testLogger(),
	}
}

func TestGenerateReadsFirstOutputLine(t *testing.T) {
	requireShell(t)

	g := shellGenerator(t, "")
	g.Args = []string{"-c", "printf 'hello world\\nsecond line\\n' > " + g.OutputPath}

	text, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestGenerateSubstitutesTranscriptPlaceholder(t *testing.T) {
	requireShell(t)

	transcript := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(transcript, []byte("typed so far"), 0o644))

	g := shellGenerator(t, "")
	g.Args = []string{"-c", "cat {transcript} > " + g.OutputPath}

	text, err := g.Generate(context.Background(), transcript)
	require.NoError(t, err)
	assert.Equal(t, "typed so far", text)
}

func TestGenerateAppendsPathWithoutPlaceholder(t *testing.T) {
	requireShell(t)

	out := filepath.Join(t.TempDir(), "argv.txt")
	g := &CommandGenerator{
		Command:    "sh",
		Args:       []string{"-c", `echo "$0" > ` + out},
		OutputPath: out,
		Log:        testLogger(),
	}

	// Without the placeholder the transcript path becomes the last
	// argument, which sh -c binds to $0.
	text, err := g.Generate(context.Background(), "/tmp/events.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/events.jsonl", text)
}

func TestGenerateEmptyOutputMeansNoSuggestion(t *testing.T) {
	requireShell(t)

	g := shellGenerator(t, "")
	g.Args = []string{"-c", ": > " + g.OutputPath}

	text, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateCommandFailure(t *testing.T) {
	requireShell(t)

	g := shellGenerator(t, "echo broken >&2; exit 3")
	_, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	assert.Error(t, err)
}

func TestGenerateMissingOutputFile(t *testing.T) {
	requireShell(t)

	g := shellGenerator(t, "true")
	_, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	assert.Error(t, err)
}

func TestGenerateNoCommandConfigured(t *testing.T) {
	g := &CommandGenerator{Log: testLogger()}
	_, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	assert.Error(t, err)
}

func TestGenerateTimeout(t *testing.T) {
	requireShell(t)

	g := shellGenerator(t, "sleep 10")
	g.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := g.Generate(context.Background(), "/tmp/unused.jsonl")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
