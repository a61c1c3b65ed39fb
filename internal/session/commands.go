package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
	"github.com/quocvuong92/fastgpt-cli/internal/display"
	"github.com/quocvuong92/fastgpt-cli/internal/logging"
)

// ErrUnknownCommand is reported for a slash command that does not exist
var ErrUnknownCommand = errors.New("unknown command")

// command is a slash command handler. It returns the state to move to.
type command struct {
	name  string
	usage string
	desc  string
	// needsArg commands print their usage when called without an argument
	needsArg bool
	run      func(s *Session, ctx context.Context, arg string) State
}

// commands lists every slash command in help order. Commands without a
// usage string are aliases and are left out of the help listing.
var commands []command

func init() {
	commands = []command{
		{name: "/exit", usage: "/exit or /quit", desc: "Exit the session", run: (*Session).cmdExit},
		{name: "/quit", desc: "Exit the session", run: (*Session).cmdExit},
		{name: "/clear", usage: "/clear", desc: "Clear conversation history", run: (*Session).cmdClear},
		{name: "/history", usage: "/history", desc: "Show conversation history", run: (*Session).cmdHistory},
		{name: "/help", usage: "/help", desc: "Show this help", run: (*Session).cmdHelp},
		{name: "/add-file", usage: "/add-file <path>", desc: "Attach a file or directory as context", needsArg: true, run: (*Session).cmdAddFile},
		{name: "/remove-file", usage: "/remove-file <path>", desc: "Detach a file from context", needsArg: true, run: (*Session).cmdRemoveFile},
		{name: "/list-files", usage: "/list-files", desc: "List attached files", run: (*Session).cmdListFiles},
		{name: "/clear-files", usage: "/clear-files", desc: "Detach all files", run: (*Session).cmdClearFiles},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// CommandNames returns every command name, for completion
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}
	return names
}

// CommandDescription returns the help text for a command name
func CommandDescription(name string) string {
	if c, ok := lookupCommand(name); ok {
		return c.desc
	}
	return ""
}

// Help returns the command listing shown by /help and the banner
func Help() []display.CommandHelp {
	out := make([]display.CommandHelp, 0, len(commands))
	for _, c := range commands {
		if c.usage == "" {
			continue
		}
		out = append(out, display.CommandHelp{Usage: c.usage, Description: c.desc})
	}
	return out
}

func (s *Session) runCommand(ctx context.Context, in Input) State {
	cmd, ok := lookupCommand(in.Name)
	if !ok {
		s.log.Warn("unknown command", logging.Fields{"name": in.Name})
		s.printer.Error(fmt.Errorf("%w: %s. Type /help for available commands", ErrUnknownCommand, in.Name))
		return AwaitingInput
	}
	if cmd.needsArg && in.Arg == "" {
		s.printer.Warning("Usage: %s", cmd.usage)
		return AwaitingInput
	}

	s.log.Debug("running command", logging.Fields{"name": cmd.name, "arg": in.Arg})
	return cmd.run(s, ctx, in.Arg)
}

func (s *Session) cmdExit(_ context.Context, _ string) State {
	s.printer.Success("Goodbye!")
	return Exited
}

func (s *Session) cmdClear(_ context.Context, _ string) State {
	s.conv.ClearTurns()
	if s.terminal {
		s.printer.ClearScreen()
		s.printer.Banner(s.id, Help())
	}
	s.printer.Warning("Conversation history cleared.")
	return AwaitingInput
}

func (s *Session) cmdHistory(_ context.Context, _ string) State {
	turns := s.conv.Turns()
	if s.cfg.JSON {
		data, err := conversation.MarshalTurns(turns)
		if err != nil {
			s.printer.Error(err)
			return AwaitingInput
		}
		s.printer.Raw(data)
		return AwaitingInput
	}
	s.printer.History(turns)
	return AwaitingInput
}

func (s *Session) cmdHelp(_ context.Context, _ string) State {
	s.printer.Help(Help())
	return AwaitingInput
}

func (s *Session) cmdAddFile(_ context.Context, path string) State {
	res, err := s.loader.Load(path)
	if err != nil {
		s.log.Warn("add-file failed", logging.Fields{"path": path, "error": err.Error()})
		s.printer.Error(err)
		return AwaitingInput
	}

	for _, fc := range res.Files {
		replaced := s.conv.AddFile(fc)
		s.printer.FileAdded(fc, replaced)
	}
	for _, fe := range res.Unsupported {
		s.printer.Warning("Skipped %s: %v", fe.Path, fe.Err)
	}
	for _, fe := range res.Failures {
		s.printer.Warning("Skipped %s: %v", fe.Path, fe.Err)
	}
	if res.Empty() {
		s.printer.Warning("No supported files found in %s", path)
	}

	s.log.Info("files added", logging.Fields{
		"path":     path,
		"added":    len(res.Files),
		"failed":   len(res.Failures),
		"skipped":  len(res.Unsupported),
		"in_scope": len(s.conv.Files()),
	})
	return AwaitingInput
}

func (s *Session) cmdRemoveFile(_ context.Context, path string) State {
	if err := s.conv.RemoveFile(path); err != nil {
		s.printer.Error(err)
		return AwaitingInput
	}
	s.printer.Success("Removed %s", path)
	return AwaitingInput
}

func (s *Session) cmdListFiles(_ context.Context, _ string) State {
	s.printer.Files(s.conv.Files())
	return AwaitingInput
}

func (s *Session) cmdClearFiles(_ context.Context, _ string) State {
	n := len(s.conv.Files())
	s.conv.ClearFiles()
	s.printer.Warning("Cleared %d file(s) from context.", n)
	return AwaitingInput
}
