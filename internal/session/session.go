// Package session implements the interactive question loop as an explicit
// state machine. Each input line moves the session from AwaitingInput
// through classification to either a local command or a remote query, and
// back to AwaitingInput unless the user exits.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/quocvuong92/fastgpt-cli/internal/api"
	"github.com/quocvuong92/fastgpt-cli/internal/config"
	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
	"github.com/quocvuong92/fastgpt-cli/internal/display"
	"github.com/quocvuong92/fastgpt-cli/internal/filecontext"
	"github.com/quocvuong92/fastgpt-cli/internal/logging"
)

// State is a position in the session loop
type State int

const (
	AwaitingInput State = iota
	Classifying
	Dispatching
	LocalCommand
	Rendering
	Exited
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting-input"
	case Classifying:
		return "classifying"
	case Dispatching:
		return "dispatching"
	case LocalCommand:
		return "local-command"
	case Rendering:
		return "rendering"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Options configures a Session. Config and Executor are required.
type Options struct {
	Config   *config.Config
	Executor api.QueryExecutor

	// Loader defaults to filecontext.NewLoader()
	Loader *filecontext.Loader
	// Printer defaults to a plain printer on stdout
	Printer *display.Printer
	// Logger defaults to a discarding logger
	Logger *logging.Logger

	// Terminal enables screen clearing on /clear and the waiting spinner
	Terminal bool
	// SpinnerOutput is where the spinner draws, defaults to stderr
	SpinnerOutput io.Writer

	// ID defaults to a random UUID
	ID string
}

// Session is one run of the interactive loop
type Session struct {
	id       string
	cfg      *config.Config
	exec     api.QueryExecutor
	loader   *filecontext.Loader
	printer  *display.Printer
	log      *logging.ComponentLogger
	conv     *conversation.State
	state    State
	terminal bool
	spinOut  io.Writer
}

// New creates a session with an empty conversation
func New(opts Options) *Session {
	if opts.Loader == nil {
		opts.Loader = filecontext.NewLoader()
	}
	if opts.Printer == nil {
		opts.Printer = display.NewPrinter(os.Stdout, nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.SpinnerOutput == nil {
		opts.SpinnerOutput = os.Stderr
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}

	return &Session{
		id:       opts.ID,
		cfg:      opts.Config,
		exec:     opts.Executor,
		loader:   opts.Loader,
		printer:  opts.Printer,
		log:      opts.Logger.With("session"),
		conv:     conversation.New(),
		state:    AwaitingInput,
		terminal: opts.Terminal,
		spinOut:  opts.SpinnerOutput,
	}
}

// ID returns the session identifier shown in the banner
func (s *Session) ID() string {
	return s.id
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Conversation returns the live conversation state
func (s *Session) Conversation() *conversation.State {
	return s.conv
}

// Printer returns the printer used for output
func (s *Session) Printer() *display.Printer {
	return s.printer
}

// Banner prints the session header
func (s *Session) Banner() {
	s.printer.Banner(s.id, Help())
}

// HandleLine processes one input line to completion, including any query,
// and returns the resulting state. Lines received after exit are ignored.
func (s *Session) HandleLine(ctx context.Context, line string) State {
	if s.state == Exited {
		return Exited
	}

	s.state = Classifying
	in := Classify(line)

	switch in.Kind {
	case InputEmpty:
		s.state = AwaitingInput
	case InputCommand:
		s.state = LocalCommand
		s.state = s.runCommand(ctx, in)
	case InputQuestion:
		s.state = Dispatching
		_ = s.ask(ctx, in.Text)
		s.state = AwaitingInput
	}

	return s.state
}

// Ask sends one question and prints the answer. It is the one-shot entry
// point; the returned error has already been printed.
func (s *Session) Ask(ctx context.Context, question string) error {
	s.state = Dispatching
	err := s.ask(ctx, question)
	s.state = AwaitingInput
	return err
}

func (s *Session) ask(ctx context.Context, question string) error {
	s.conv.AppendUserTurn(question)
	payload := s.conv.AssemblePayload()

	s.log.Debug("dispatching question", logging.Fields{
		"files": len(payload.Files),
		"turns": len(payload.Turns),
	})

	var spin *display.Spinner
	if s.terminal {
		spin = display.NewSpinner(s.spinOut, "Thinking...")
		spin.Start()
	}

	resp, err := s.exec.Execute(ctx, &api.Request{
		Payload:    payload,
		Cache:      s.cfg.Cache,
		References: s.cfg.References,
	})

	if spin != nil {
		spin.Stop()
	}

	if err != nil {
		// The user turn stays in history unanswered
		s.log.Error("query failed", err)
		s.printer.Error(err)
		return err
	}

	s.conv.AppendAssistantTurn(resp.Answer)
	s.state = Rendering
	s.render(question, resp)
	return nil
}

func (s *Session) render(question string, resp *api.Response) {
	if s.cfg.JSON {
		s.printer.Raw(resp.Raw)
		return
	}

	answer := display.Answer{
		Query:  question,
		Text:   resp.Answer,
		Tokens: resp.Tokens,
		Node:   resp.Node,
		Ms:     resp.Ms,
	}
	if s.cfg.References {
		for _, ref := range resp.References {
			answer.References = append(answer.References, display.Citation{
				Title:   ref.Title,
				URL:     ref.URL,
				Snippet: ref.Snippet,
			})
		}
	}
	s.printer.Answer(answer)
}

// Exit ends the session as if input had ended
func (s *Session) Exit() {
	if s.state == Exited {
		return
	}
	s.printer.Success("Goodbye!")
	s.state = Exited
}

// LineReader supplies input lines. ReadLine returns io.EOF when input ends.
type LineReader interface {
	ReadLine() (string, error)
}

// Run reads lines until the session exits or input ends. End of input is a
// normal exit and returns nil.
func (s *Session) Run(ctx context.Context, r LineReader) error {
	for s.state != Exited {
		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.Exit()
				return nil
			}
			return err
		}
		s.HandleLine(ctx, line)
	}
	return nil
}

// ScannerReader reads lines from an io.Reader
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader creates a LineReader over r. Lines up to 1 MiB are accepted.
func NewScannerReader(r io.Reader) *ScannerReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ScannerReader{scanner: sc}
}

func (r *ScannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
