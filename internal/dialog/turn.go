// Package dialog implements the conversation driver: one state machine with
// two operating modes. Message ingestion turns pasted text into tasks;
// decomposition runs a follow-up-question dialogue that refines one task
// into subtasks. Both modes share the same guard, classification, and
// thread-adoption discipline and differ only in endpoint and response shape.
package dialog

import (
	"errors"
	"time"
)

// Guard errors returned before any call is made.
var (
	// ErrEmptyMessage rejects empty or whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy rejects a call while one is already in flight for the same
	// dialogue. Calls are rejected, not queued.
	ErrBusy = errors.New("a request is already in progress")

	// ErrClosed rejects calls on a closed task view.
	ErrClosed = errors.New("task view is closed")
)

// Turn is one exchange in a decomposition dialogue. Turns are append-only:
// an in-flight turn transitions in place from awaiting to answered, and
// multi-part answers append new turns after it, but a turn is never deleted.
type Turn struct {
	Question string
	Answer   string
	AskedAt  time.Time
	Awaiting bool
}

// Synthetic turn text. The implicit organize question mirrors the button
// that opens the dialogue; the error texts are shown verbatim to the user.
const (
	organizeQuestion = "Help me organize this task"
	additionalInfo   = "Additional information"

	organizedFallback = "Task organized."
	answerFallback    = "Understood."

	organizeErrText = "Sorry, I encountered an error while organizing the task."
	followUpErrText = "Sorry, I encountered an error while processing your request."
)

// SuggestedQuestions are canned follow-ups offered in the decomposition
// dialogue.
var SuggestedQuestions = []string{
	"What are the key stakeholders for this task?",
	"Can you break down the main objectives?",
	"What are the dependencies between subtasks?",
	"What are the potential risks?",
	"How should we prioritize these subtasks?",
}
