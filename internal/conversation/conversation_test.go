package conversation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_AppendTurnsInOrder(t *testing.T) {
	s := New()
	s.AppendUserTurn("q1")
	s.AppendAssistantTurn("a1")
	s.AppendUserTurn("q2")

	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "q2"},
	}, s.Turns())
}

func TestState_TurnsIsACopy(t *testing.T) {
	s := New()
	s.AppendUserTurn("original")

	turns := s.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", s.Turns()[0].Content)
}

func TestState_ClearTurnsKeepsFiles(t *testing.T) {
	s := New()
	s.AddFile(FileContext{Path: "a.txt", Content: "a"})
	s.AppendUserTurn("q")
	s.AppendAssistantTurn("a")

	s.ClearTurns()

	assert.Empty(t, s.Turns())
	assert.Len(t, s.Files(), 1)
}

func TestState_ClearFilesKeepsTurns(t *testing.T) {
	s := New()
	s.AddFile(FileContext{Path: "a.txt", Content: "a"})
	s.AddFile(FileContext{Path: "b.txt", Content: "b"})
	s.AppendUserTurn("q")

	s.ClearFiles()

	assert.Empty(t, s.Files())
	assert.False(t, s.HasFile("a.txt"))
	assert.Len(t, s.Turns(), 1)

	// Adding after a clear works
	s.AddFile(FileContext{Path: "c.txt"})
	assert.True(t, s.HasFile("c.txt"))
}

func TestState_AddFileReplacesInPlace(t *testing.T) {
	s := New()
	assert.False(t, s.AddFile(FileContext{Path: "a.txt", Content: "old"}))
	assert.False(t, s.AddFile(FileContext{Path: "b.txt", Content: "b"}))
	assert.True(t, s.AddFile(FileContext{Path: "a.txt", Content: "new"}))

	files := s.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "new", files[0].Content)
	assert.Equal(t, "b.txt", files[1].Path)
}

func TestState_RemoveFile(t *testing.T) {
	s := New()
	s.AddFile(FileContext{Path: "a.txt"})
	s.AddFile(FileContext{Path: "b.txt"})
	s.AddFile(FileContext{Path: "c.txt"})

	require.NoError(t, s.RemoveFile("b.txt"))

	files := s.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "c.txt", files[1].Path)

	// Index stays consistent after the shift
	require.NoError(t, s.RemoveFile("c.txt"))
	assert.True(t, s.HasFile("a.txt"))
	assert.False(t, s.HasFile("c.txt"))
}

func TestState_RemoveMissingFile(t *testing.T) {
	s := New()

	err := s.RemoveFile("missing.txt")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotInContext))
	assert.Contains(t, err.Error(), "missing.txt")
	assert.Empty(t, s.Files())
}

func TestState_AssemblePayloadDeterministic(t *testing.T) {
	s := New()
	s.AddFile(FileContext{Path: "notes.md", Content: "hello"})
	s.AppendUserTurn("what does notes.md say?")

	first := s.AssemblePayload()
	second := s.AssemblePayload()

	assert.Equal(t, first, second)
	assert.Equal(t, first.Prompt(), second.Prompt())
}

func TestState_AssemblePayloadIsolated(t *testing.T) {
	s := New()
	s.AppendUserTurn("q")

	p := s.AssemblePayload()
	s.AppendAssistantTurn("a")

	assert.Len(t, p.Turns, 1, "payload must not observe later mutation")
}

func TestPayload_Question(t *testing.T) {
	tests := []struct {
		name   string
		turns  []Turn
		want   string
		wantOK bool
	}{
		{"empty", nil, "", false},
		{"last is user", []Turn{{RoleUser, "q1"}, {RoleAssistant, "a1"}, {RoleUser, "q2"}}, "q2", true},
		{"last is assistant", []Turn{{RoleUser, "q1"}, {RoleAssistant, "a1"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Payload{Turns: tt.turns}.Question()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPayload_PromptBareQuestion(t *testing.T) {
	p := Payload{Turns: []Turn{{Role: RoleUser, Content: "What is Go?"}}}

	assert.Equal(t, "What is Go?", p.Prompt())
}

func TestPayload_PromptWithFilesAndHistory(t *testing.T) {
	p := Payload{
		Files: []FileContext{
			{Path: "notes.md", Content: "hello"},
			{Path: "main.go", Content: "package main\n"},
		},
		Turns: []Turn{
			{Role: RoleUser, Content: "q1"},
			{Role: RoleAssistant, Content: "a1"},
			{Role: RoleUser, Content: "q2"},
		},
	}

	want := "Attached files:\n\n" +
		"File: notes.md\n```\nhello\n```\n\n" +
		"File: main.go\n```\npackage main\n```\n\n" +
		"Previous conversation:\n" +
		"User: q1\n" +
		"Assistant: a1\n\n" +
		"Current question: q2"

	assert.Equal(t, want, p.Prompt())
}

func TestPayload_PromptFilesOnlyQuestion(t *testing.T) {
	s := New()
	s.AddFile(FileContext{Path: "notes.md", Content: "hello"})
	s.AppendUserTurn("what does notes.md say?")

	prompt := s.AssemblePayload().Prompt()

	assert.Contains(t, prompt, "File: notes.md\n```\nhello\n```")
	assert.Contains(t, prompt, "Current question: what does notes.md say?")
	assert.NotContains(t, prompt, "Previous conversation")
}

func TestPayload_PromptAfterFailedQuestion(t *testing.T) {
	// An unanswered question stays in history as a lone user line
	p := Payload{Turns: []Turn{
		{Role: RoleUser, Content: "lost"},
		{Role: RoleUser, Content: "retry"},
	}}

	assert.Equal(t, "Previous conversation:\nUser: lost\n\nCurrent question: retry", p.Prompt())
}

func TestMarshalTurns(t *testing.T) {
	data, err := MarshalTurns([]Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []map[string]string{
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"},
	}, decoded)

	empty, err := MarshalTurns(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var turns []Turn
	require.NoError(t, json.Unmarshal([]byte(`[{"role":"assistant","content":"x"}]`), &turns))
	assert.Equal(t, RoleAssistant, turns[0].Role)

	var r Role
	assert.Error(t, json.Unmarshal([]byte(`"system"`), &r))
}
