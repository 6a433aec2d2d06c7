package prompt

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned by MockPrompter when a method is called
// more times than answers were scripted.
var ErrScriptExhausted = errors.New("mock prompter: no scripted answer left")

// MockChoice is a scripted answer to Choose.
type MockChoice struct {
	Name     string
	Selected bool
}

// MockCall records one prompter invocation.
type MockCall struct {
	Method  string
	Prompt  string
	Options []string
}

// MockPrompter replays scripted answers for testing.
type MockPrompter struct {
	mu sync.Mutex

	Confirms []bool
	Choices  []MockChoice
	Answers  []string

	// Error flags for testing error conditions
	ConfirmErr error
	ChooseErr  error
	AskErr     error

	Calls []MockCall
}

// Confirm returns the next scripted confirmation.
func (m *MockPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "Confirm", Prompt: question})
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.ConfirmErr != nil {
		return false, m.ConfirmErr
	}
	if len(m.Confirms) == 0 {
		return false, ErrScriptExhausted
	}
	answer := m.Confirms[0]
	m.Confirms = m.Confirms[1:]
	return answer, nil
}

// Choose returns the next scripted choice.
func (m *MockPrompter) Choose(ctx context.Context, prompt string, options []string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "Choose", Prompt: prompt, Options: append([]string(nil), options...)})
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if m.ChooseErr != nil {
		return "", false, m.ChooseErr
	}
	if len(m.Choices) == 0 {
		return "", false, ErrScriptExhausted
	}
	choice := m.Choices[0]
	m.Choices = m.Choices[1:]
	return choice.Name, choice.Selected, nil
}

// Ask returns the next scripted answer.
func (m *MockPrompter) Ask(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "Ask", Prompt: prompt})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.AskErr != nil {
		return "", m.AskErr
	}
	if len(m.Answers) == 0 {
		return "", ErrScriptExhausted
	}
	answer := m.Answers[0]
	m.Answers = m.Answers[1:]
	return answer, nil
}

// CallCount returns how many times method was invoked.
func (m *MockPrompter) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
