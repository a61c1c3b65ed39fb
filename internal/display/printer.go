// Package display renders session output for the terminal: status lines,
// answers with references, history and file listings.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
)

const ruleWidth = 80

// Citation is a reference printed under an answer
type Citation struct {
	Title   string
	URL     string
	Snippet string
}

// Answer is a successful reply ready to print
type Answer struct {
	Query      string
	Text       string
	References []Citation
	Tokens     int
	Node       string
	Ms         int64
}

// CommandHelp is one line of the command listing
type CommandHelp struct {
	Usage       string
	Description string
}

// Printer writes formatted output to one writer
type Printer struct {
	out      io.Writer
	renderer *Renderer
}

// NewPrinter creates a Printer. A nil renderer prints answers with inline
// formatting only.
func NewPrinter(out io.Writer, renderer *Renderer) *Printer {
	return &Printer{out: out, renderer: renderer}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) Success(format string, args ...interface{}) {
	successColor.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Error(err error) {
	errorColor.Fprint(p.out, "Error: ")
	fmt.Fprintln(p.out, err)
}

func (p *Printer) Warning(format string, args ...interface{}) {
	warningColor.Fprintf(p.out, "%s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...interface{}) {
	infoColor.Fprintf(p.out, "%s\n", fmt.Sprintf(format, args...))
}

// Dim prints secondary text
func (p *Printer) Dim(format string, args ...interface{}) {
	dimColor.Fprintf(p.out, "%s\n", fmt.Sprintf(format, args...))
}

// ClearScreen clears the terminal and its scrollback
func (p *Printer) ClearScreen() {
	fmt.Fprint(p.out, "\x1b[2J\x1b[3J\x1b[H")
}

// Banner prints the session header and command list
func (p *Printer) Banner(sessionID string, commands []CommandHelp) {
	header := Styles.Title.Render(constants.AppTitle) + "\n" +
		Styles.Label.Render("Session ID: ") + Styles.Command.Render(sessionID)
	fmt.Fprintln(p.out, Styles.Banner.Render(header))
	fmt.Fprintln(p.out)
	p.Help(commands)
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s Just start typing your question!\n\n", accentColor.Sprint("Tip:"))
}

// Help prints the command listing
func (p *Printer) Help(commands []CommandHelp) {
	width := 0
	for _, c := range commands {
		if w := runewidth.StringWidth(c.Usage); w > width {
			width = w
		}
	}

	fmt.Fprintln(p.out, Styles.Heading.Render("Commands:"))
	for _, c := range commands {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(c.Usage))
		fmt.Fprintf(p.out, "  %s%s  %s\n", Styles.Command.Render(c.Usage), pad, c.Description)
	}
}

// Answer prints a reply with its references and a usage footer
func (p *Printer) Answer(a Answer) {
	rule := Styles.Rule.Render(strings.Repeat("=", ruleWidth))
	fmt.Fprintln(p.out, rule)
	fmt.Fprintf(p.out, "%s %s\n", successColor.Sprint("Query:"), a.Query)
	fmt.Fprintln(p.out, rule)
	fmt.Fprintln(p.out)

	if p.renderer != nil {
		fmt.Fprintln(p.out, p.renderer.Render(a.Text))
	} else {
		fmt.Fprintln(p.out, FormatMarkdown(a.Text))
	}
	fmt.Fprintln(p.out)

	p.References(a.References)

	fmt.Fprintln(p.out, Styles.Thin.Render(strings.Repeat("-", ruleWidth)))
	fmt.Fprintf(p.out, "%s %s | %s %s | %s %sms\n",
		dimColor.Sprint("Tokens:"), accentColor.Sprint(a.Tokens),
		dimColor.Sprint("Node:"), accentColor.Sprint(a.Node),
		dimColor.Sprint("Time:"), accentColor.Sprint(a.Ms),
	)
}

// References prints a numbered citation list. Nothing is printed for none.
func (p *Printer) References(refs []Citation) {
	if len(refs) == 0 {
		return
	}

	fmt.Fprintln(p.out, Styles.Heading.Render("References:"))
	fmt.Fprintln(p.out, Styles.Thin.Render(strings.Repeat("-", 40)))
	for i, ref := range refs {
		fmt.Fprintf(p.out, "%s. %s\n", infoColor.Sprint(i+1), boldText.Sprint(FormatMarkdown(ref.Title)))
		fmt.Fprintf(p.out, "   %s\n", Styles.Link.Render(ref.URL))
		if ref.Snippet != "" {
			fmt.Fprintf(p.out, "   %s\n", dimColor.Sprint(FormatMarkdown(ref.Snippet)))
		}
		fmt.Fprintln(p.out)
	}
}

// Raw prints a response body exactly as received
func (p *Printer) Raw(body []byte) {
	_, _ = p.out.Write(body)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		fmt.Fprintln(p.out)
	}
}

// History prints the turns in order with role labels
func (p *Printer) History(turns []conversation.Turn) {
	if len(turns) == 0 {
		p.Dim("No conversation history.")
		return
	}

	fmt.Fprintln(p.out, Styles.Heading.Render("Conversation History:"))
	fmt.Fprintln(p.out, Styles.Rule.Render(strings.Repeat("=", 50)))
	for i, t := range turns {
		label := Styles.RoleUser.Render(t.Role.Label())
		if t.Role == conversation.RoleAssistant {
			label = Styles.RoleModel.Render(t.Role.Label())
		}
		fmt.Fprintf(p.out, "%s. %s: %s\n", infoColor.Sprint(i+1), label, t.Content)
	}
}

// Files prints the attached files with their sizes
func (p *Printer) Files(files []conversation.FileContext) {
	if len(files) == 0 {
		p.Dim("No files in context.")
		return
	}

	var total int64
	fmt.Fprintln(p.out, Styles.Heading.Render("Files in context:"))
	for _, f := range files {
		total += f.Size
		fmt.Fprintf(p.out, "  %s %s\n", Styles.Command.Render(f.Path), dimColor.Sprintf("(%s)", humanize.Bytes(uint64(f.Size))))
	}
	p.Dim("%d file(s), %s total", len(files), humanize.Bytes(uint64(total)))
}

// FileAdded prints one successfully attached file
func (p *Printer) FileAdded(f conversation.FileContext, replaced bool) {
	verb := "Added"
	if replaced {
		verb = "Replaced"
	}
	p.Success("%s %s (%s)", verb, f.Path, humanize.Bytes(uint64(f.Size)))
}
