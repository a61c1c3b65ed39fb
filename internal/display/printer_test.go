package display

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func newTestPrinter() (*Printer, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	return NewPrinter(&buf, nil), &buf
}

func TestFormatMarkdown(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "a **b** c", "a b c"},
		{"italic", "a *b* c", "a b c"},
		{"code", "run `go test` now", "run go test now"},
		{"entities", "Tom &amp; Jerry &lt;3 &#39;hi&#39;", "Tom & Jerry <3 'hi'"},
		{"mixed", "**x** and *y* and `z`", "x and y and z"},
		{"untouched", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plain(FormatMarkdown(tt.in)))
		})
	}
}

func TestPrinter_Answer(t *testing.T) {
	p, buf := newTestPrinter()

	p.Answer(Answer{
		Query: "What is Go?",
		Text:  "Go is **fast**.",
		References: []Citation{
			{Title: "Go &amp; you", URL: "https://go.dev", Snippet: "The *Go* site"},
		},
		Tokens: 42,
		Node:   "us-east",
		Ms:     950,
	})

	out := plain(buf.String())
	assert.Contains(t, out, "Query: What is Go?")
	assert.Contains(t, out, "Go is fast.")
	assert.Contains(t, out, "References:")
	assert.Contains(t, out, "1. Go & you")
	assert.Contains(t, out, "https://go.dev")
	assert.Contains(t, out, "The Go site")
	assert.Contains(t, out, "Tokens: 42 | Node: us-east | Time: 950ms")
}

func TestPrinter_AnswerWithoutReferences(t *testing.T) {
	p, buf := newTestPrinter()

	p.Answer(Answer{Query: "q", Text: "a"})

	assert.NotContains(t, plain(buf.String()), "References:")
}

func TestPrinter_RawIsVerbatim(t *testing.T) {
	p, buf := newTestPrinter()
	body := []byte(`{"data":{"output":"**not formatted**"}}`)

	p.Raw(body)

	assert.Equal(t, string(body)+"\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestPrinter_RawIgnoresWriteErrors(t *testing.T) {
	p := NewPrinter(failingWriter{}, nil)

	assert.NotPanics(t, func() { p.Raw([]byte(`{"data":{}}`)) })
}

func TestPrinter_History(t *testing.T) {
	p, buf := newTestPrinter()

	p.History([]conversation.Turn{
		{Role: conversation.RoleUser, Content: "hi"},
		{Role: conversation.RoleAssistant, Content: "hello"},
	})

	out := plain(buf.String())
	assert.Contains(t, out, "1. User: hi")
	assert.Contains(t, out, "2. Assistant: hello")
	assert.Less(t, strings.Index(out, "User: hi"), strings.Index(out, "Assistant: hello"))
}

func TestPrinter_HistoryEmpty(t *testing.T) {
	p, buf := newTestPrinter()

	p.History(nil)

	assert.Contains(t, buf.String(), "No conversation history.")
}

func TestPrinter_Files(t *testing.T) {
	p, buf := newTestPrinter()

	p.Files([]conversation.FileContext{
		{Path: "notes.md", Size: 5},
		{Path: "big.txt", Size: 2048},
	})

	out := plain(buf.String())
	assert.Contains(t, out, "notes.md (5 B)")
	assert.Contains(t, out, "big.txt (2.0 kB)")
	assert.Contains(t, out, "2 file(s), 2.1 kB total")
}

func TestPrinter_Help(t *testing.T) {
	p, buf := newTestPrinter()

	p.Help([]CommandHelp{
		{Usage: "/exit", Description: "Exit"},
		{Usage: "/add-file <path>", Description: "Attach"},
	})

	lines := strings.Split(strings.TrimSpace(plain(buf.String())), "\n")
	require.Len(t, lines, 3)
	// Descriptions are aligned
	assert.Equal(t, strings.Index(lines[1], "Exit"), strings.Index(lines[2], "Attach"))
}

func TestPrinter_Error(t *testing.T) {
	p, buf := newTestPrinter()

	p.Error(errors.New("boom"))

	assert.Equal(t, "Error: boom\n", plain(buf.String()))
}

func TestRenderer_NilFallsBack(t *testing.T) {
	var r *Renderer
	assert.Equal(t, "a & b", r.Render("a &amp; b"))
}
