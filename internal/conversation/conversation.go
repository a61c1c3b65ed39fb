// Package conversation holds the in-memory state of one interactive session:
// the ordered list of turns and the set of files attached as context.
package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrFileNotInContext is returned when removing a path that is not attached
var ErrFileNotInContext = errors.New("file not in context")

// Role identifies who produced a turn
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns the lower-case role name used in JSON output
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Label returns the role name as printed in history listings and prompts
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the role as its lower-case name
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a lower-case role name
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "user":
		*r = RoleUser
	case "assistant":
		*r = RoleAssistant
	default:
		return fmt.Errorf("unknown role %q", s)
	}
	return nil
}

// Turn is one message in the conversation
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FileContext is a snapshot of a local text file attached to the conversation
type FileContext struct {
	Path    string `json:"path"`
	Content string `json:"-"`
	// Size is the file size on disk in bytes
	Size int64 `json:"size"`
}

// State is the conversation of one session. The zero value is ready to use.
// It is not safe for concurrent use; the session loop is single-threaded.
type State struct {
	turns []Turn
	files []FileContext
	index map[string]int
}

// New returns an empty State
func New() *State {
	return &State{}
}

// AppendUserTurn appends a question
func (s *State) AppendUserTurn(text string) {
	s.turns = append(s.turns, Turn{Role: RoleUser, Content: text})
}

// AppendAssistantTurn appends an answer
func (s *State) AppendAssistantTurn(text string) {
	s.turns = append(s.turns, Turn{Role: RoleAssistant, Content: text})
}

// ClearTurns drops the conversation history. Attached files are kept.
func (s *State) ClearTurns() {
	s.turns = nil
}

// Turns returns a copy of the turns in chronological order
func (s *State) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AddFile attaches fc. A file already attached under the same path is
// replaced and keeps its position. It reports whether a file was replaced.
func (s *State) AddFile(fc FileContext) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[fc.Path]; ok {
		s.files[i] = fc
		return true
	}
	s.index[fc.Path] = len(s.files)
	s.files = append(s.files, fc)
	return false
}

// RemoveFile detaches the file at path
func (s *State) RemoveFile(path string) error {
	i, ok := s.index[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotInContext, path)
	}
	s.files = append(s.files[:i], s.files[i+1:]...)
	delete(s.index, path)
	for j := i; j < len(s.files); j++ {
		s.index[s.files[j].Path] = j
	}
	return nil
}

// ClearFiles detaches all files. The conversation history is kept.
func (s *State) ClearFiles() {
	s.files = nil
	s.index = nil
}

// HasFile reports whether path is attached
func (s *State) HasFile(path string) bool {
	_, ok := s.index[path]
	return ok
}

// Files returns a copy of the attached files in the order they were added
func (s *State) Files() []FileContext {
	out := make([]FileContext, len(s.files))
	copy(out, s.files)
	return out
}

// AssemblePayload builds what is sent for the newest question: every
// attached file followed by the full turn history. It does not modify s.
func (s *State) AssemblePayload() Payload {
	return Payload{
		Files: s.Files(),
		Turns: s.Turns(),
	}
}

// Payload is the outbound context for one query
type Payload struct {
	Files []FileContext
	Turns []Turn
}

// Question returns the newest unanswered user turn, if any
func (p Payload) Question() (string, bool) {
	if len(p.Turns) == 0 {
		return "", false
	}
	last := p.Turns[len(p.Turns)-1]
	if last.Role != RoleUser {
		return "", false
	}
	return last.Content, true
}

// Prompt flattens the payload into the single query string the API accepts.
// A lone question with no attached files is sent as is.
func (p Payload) Prompt() string {
	question, hasQuestion := p.Question()
	history := p.Turns
	if hasQuestion {
		history = p.Turns[:len(p.Turns)-1]
	}

	if len(p.Files) == 0 && len(history) == 0 {
		return question
	}

	var sb strings.Builder

	if len(p.Files) > 0 {
		sb.WriteString("Attached files:\n\n")
		for _, f := range p.Files {
			fmt.Fprintf(&sb, "File: %s\n```\n%s", f.Path, f.Content)
			if !strings.HasSuffix(f.Content, "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString("```\n\n")
		}
	}

	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, t := range history {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role.Label(), t.Content)
		}
		sb.WriteString("\n")
	}

	if hasQuestion {
		fmt.Fprintf(&sb, "Current question: %s", question)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// MarshalTurns encodes turns as a JSON array of {role, content}
func MarshalTurns(turns []Turn) ([]byte, error) {
	if turns == nil {
		turns = []Turn{}
	}
	return json.MarshalIndent(turns, "", "  ")
}
