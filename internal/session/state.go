// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package session persists per-visitor assistant state (chat history
// and quiz progress) in BadgerDB with a TTL, so a page reload does not
// lose the conversation.
package session

import "time"

// Message roles in the chat transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// visibleChatTurns and visibleQuizRounds bound what the UI renders;
// the stored transcript keeps everything up to maxStoredMessages.
const (
	visibleChatTurns  = 8
	visibleQuizRounds = 5
	maxStoredMessages = 200
)

// Message is one chat transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuizRound is one answered trivia question.
type QuizRound struct {
	Question   string `json:"question"`
	UserAnswer string `json:"user_answer"`
	Feedback   string `json:"feedback"`
}

// State is the full assistant state for one visitor.
type State struct {
	ID          string      `json:"id"`
	ChatHistory []Message   `json:"chat_history"`
	QuizHistory []QuizRound `json:"quiz_history"`

	// QuizQuestion is the open question, empty when none is pending.
	QuizQuestion       string `json:"quiz_question"`
	AwaitingQuizAnswer bool   `json:"awaiting_quiz_answer"`

	UpdatedAt time.Time `json:"updated_at"`
}

// AppendChat adds one transcript entry, dropping the oldest entries
// once the stored transcript exceeds its cap.
func (s *State) AppendChat(role, content string) {
	s.ChatHistory = append(s.ChatHistory, Message{Role: role, Content: content})
	if len(s.ChatHistory) > maxStoredMessages {
		s.ChatHistory = s.ChatHistory[len(s.ChatHistory)-maxStoredMessages:]
	}
}

// RecordQuizRound archives the open question with the user's answer
// and the grader feedback, and clears the pending-question state.
func (s *State) RecordQuizRound(userAnswer, feedback string) {
	s.QuizHistory = append(s.QuizHistory, QuizRound{
		Question:   s.QuizQuestion,
		UserAnswer: userAnswer,
		Feedback:   feedback,
	})
	s.QuizQuestion = ""
	s.AwaitingQuizAnswer = false
}

// VisibleChat returns the most recent transcript entries, oldest
// first, bounded to what the UI shows.
func (s *State) VisibleChat() []Message {
	if len(s.ChatHistory) <= visibleChatTurns {
		return s.ChatHistory
	}
	return s.ChatHistory[len(s.ChatHistory)-visibleChatTurns:]
}

// VisibleQuiz returns the most recent quiz rounds, newest first.
func (s *State) VisibleQuiz() []QuizRound {
	n := len(s.QuizHistory)
	if n > visibleQuizRounds {
		n = visibleQuizRounds
	}
	out := make([]QuizRound, 0, n)
	for i := len(s.QuizHistory) - 1; i >= len(s.QuizHistory)-n; i-- {
		out = append(out, s.QuizHistory[i])
	}
	return out
}
