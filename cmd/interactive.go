package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/session"
)

// promptDriver feeds go-prompt input lines into a session
type promptDriver struct {
	ctx         context.Context
	sess        *session.Session
	exitFlag    bool
	inputBuffer []string // Buffer for multiline input
}

// completer suggests slash commands, attached files after /remove-file and
// filesystem paths after /add-file.
func (d *promptDriver) completer(doc prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := doc.TextBeforeCursor()
	endIndex := doc.CurrentRuneIndex()
	w := doc.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	if strings.HasPrefix(text, "/remove-file ") {
		var suggestions []prompt.Suggest
		for _, f := range d.sess.Conversation().Files() {
			suggestions = append(suggestions, prompt.Suggest{Text: f.Path, Description: "(attached)"})
		}
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	if strings.HasPrefix(text, "/add-file ") {
		return pathSuggestions(w), startIndex, endIndex
	}

	if strings.Contains(text, " ") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	var suggestions []prompt.Suggest
	for _, name := range session.CommandNames() {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: session.CommandDescription(name)})
	}
	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

// pathSuggestions lists directory entries matching the partial path w
func pathSuggestions(w string) []prompt.Suggest {
	dir, base := filepath.Split(w)
	listDir := dir
	if listDir == "" {
		listDir = "."
	}

	entries, err := os.ReadDir(listDir)
	if err != nil {
		return []prompt.Suggest{}
	}

	var suggestions []prompt.Suggest
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if !strings.HasPrefix(name, base) {
			continue
		}
		desc := "file"
		if e.IsDir() {
			name += string(filepath.Separator)
			desc = "dir"
		}
		suggestions = append(suggestions, prompt.Suggest{Text: dir + name, Description: desc})
	}
	return suggestions
}

// executor handles one submitted line. A line ending in a backslash is
// joined with the next one.
func (d *promptDriver) executor(input string) {
	if d.exitFlag {
		return
	}

	if strings.HasSuffix(input, "\\") {
		d.inputBuffer = append(d.inputBuffer, strings.TrimSuffix(input, "\\"))
		fmt.Fprint(d.sess.Printer().Writer(), "... ")
		return
	}
	if len(d.inputBuffer) > 0 {
		d.inputBuffer = append(d.inputBuffer, input)
		input = strings.Join(d.inputBuffer, "\n")
		d.inputBuffer = nil
	}

	if d.sess.HandleLine(d.ctx, input) == session.Exited {
		d.exitFlag = true
	}
}

// runInteractive starts the REPL on the terminal and blocks until the
// session exits.
func (app *App) runInteractive(ctx context.Context, sess *session.Session) {
	driver := &promptDriver{ctx: ctx, sess: sess}
	printer := sess.Printer()

	printer.ClearScreen()
	sess.Banner()

	p := prompt.New(
		driver.executor,
		prompt.WithCompleter(driver.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle(constants.DefaultPromptTitle),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithScrollbarBGColor(prompt.DarkGray),
		prompt.WithScrollbarThumbColor(prompt.White),
		prompt.WithMaxSuggestion(15),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return driver.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Fprintln(printer.Writer())
				printer.Warning("Use /exit or /quit to exit.")
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Fprintln(printer.Writer())
					sess.Exit()
					driver.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}
