// Package eventlog persists the append-only JSONL transcript the suggestion
// generator consumes.
//
// Each line is one JSON object:
//
//	{"timestamp":123,"type":"keyboard","action":"keydown","key":"A","char":"a"}
//	{"timestamp":456,"type":"mouse","action":"leftdown","x":100,"y":200}
//
// char is null for non-printable keys. The line shapes are a wire contract
// with the external generator; the optional tamper-evidence chain therefore
// lives in a sidecar file instead of extra JSON fields.
package eventlog

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// KeyboardLine is one keyboard event in the transcript.
type KeyboardLine struct {
	Timestamp uint64  `json:"timestamp"`
	Type      string  `json:"type"`
	Action    string  `json:"action"`
	Key       string  `json:"key"`
	Char      *string `json:"char"`
}

// MouseLine is one mouse button event in the transcript.
type MouseLine struct {
	Timestamp uint64 `json:"timestamp"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
}

// Writer appends transcript lines. A fresh capture session truncates the
// file, matching the original single-session transcript model.
type Writer struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	buf       *bufio.Writer
	chain     *os.File
	prevHash  [32]byte
	chained   bool
}

// ChainSuffix is appended to the log path to name the hash-chain sidecar.
const ChainSuffix = ".chain"

// Open truncates and opens the transcript at path. When chained is set, a
// blake2b-256 hash chain over the raw lines is maintained in a sidecar file
// so later tampering with the transcript is detectable.
func Open(path string, chained bool) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	w := &Writer{
		path:    path,
		file:    file,
		buf:     bufio.NewWriter(file),
		chained: chained,
	}
	if chained {
		chain, err := os.OpenFile(path+ChainSuffix, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open chain sidecar: %w", err)
		}
		w.chain = chain
	}
	return w, nil
}

// Path returns the transcript path.
func (w *Writer) Path() string { return w.path }

// Keyboard appends a keyboard line. char is nil for non-printable keys.
func (w *Writer) Keyboard(ts uint64, key string, char *string, isUp bool) error {
	action := "keydown"
	if isUp {
		action = "keyup"
	}
	return w.append(KeyboardLine{
		Timestamp: ts,
		Type:      "keyboard",
		Action:    action,
		Key:       key,
		Char:      char,
	})
}

// Mouse appends a mouse button line. The action is the button name plus
// "down" or "up" ("leftdown", "rightup", ...).
func (w *Writer) Mouse(ts uint64, button string, isUp bool, x, y int32) error {
	action := button + "down"
	if isUp {
		action = button + "up"
	}
	return w.append(MouseLine{
		Timestamp: ts,
		Type:      "mouse",
		Action:    action,
		X:         x,
		Y:         y,
	})
}

func (w *Writer) append(line any) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal event line: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("append event line: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("append event line: %w", err)
	}
	// The generator may read the file at any solo trigger press; keep it
	// flushed rather than buffered across events.
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush event log: %w", err)
	}

	if w.chained {
		w.prevHash = chainHash(w.prevHash, data)
		if _, err := fmt.Fprintf(w.chain, "%s\n", hex.EncodeToString(w.prevHash[:])); err != nil {
			return fmt.Errorf("append chain entry: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the transcript.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.chain != nil {
		w.chain.Close()
	}
	return w.file.Close()
}

func chainHash(prev [32]byte, line []byte) [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write(prev[:])
	h.Write(line)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Verify replays the hash chain for the transcript at path and reports the
// first line whose recorded hash does not match. A line of -1 means no
// mismatch was found; the error still reports unreadable files.
func Verify(path string) (int, error) {
	logData, err := os.ReadFile(path)
	if err != nil {
		return -1, fmt.Errorf("read event log: %w", err)
	}
	chainData, err := os.ReadFile(path + ChainSuffix)
	if err != nil {
		return -1, fmt.Errorf("read chain sidecar: %w", err)
	}

	logLines := splitLines(logData)
	chainLines := splitLines(chainData)
	if len(logLines) != len(chainLines) {
		return min(len(logLines), len(chainLines)), fmt.Errorf(
			"line count mismatch: %d log lines, %d chain entries",
			len(logLines), len(chainLines))
	}

	var prev [32]byte
	for i, line := range logLines {
		prev = chainHash(prev, line)
		want, err := hex.DecodeString(string(chainLines[i]))
		if err != nil || !bytes.Equal(prev[:], want) {
			return i, fmt.Errorf("chain mismatch at line %d", i)
		}
	}
	return -1, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
