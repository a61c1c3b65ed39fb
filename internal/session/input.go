package session

import (
	"strings"
	"unicode"
)

// InputKind is the classification of one input line
type InputKind int

const (
	InputEmpty InputKind = iota
	InputCommand
	InputQuestion
)

func (k InputKind) String() string {
	switch k {
	case InputEmpty:
		return "empty"
	case InputCommand:
		return "command"
	case InputQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// Input is a classified line
type Input struct {
	Kind InputKind
	// Name is the command including its leading slash
	Name string
	// Arg is everything after the command name, trimmed
	Arg string
	// Text is the trimmed line
	Text string
}

// Classify decides what a line is without side effects. A line whose first
// non-space character is a slash is a command; any other non-blank line is
// a question. Command names are not validated here.
func Classify(line string) Input {
	text := strings.TrimSpace(line)
	if text == "" {
		return Input{Kind: InputEmpty}
	}
	if !strings.HasPrefix(text, "/") {
		return Input{Kind: InputQuestion, Text: text}
	}

	name, arg := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name = text[:i]
		arg = strings.TrimSpace(text[i:])
	}
	return Input{Kind: InputCommand, Name: name, Arg: arg, Text: text}
}
