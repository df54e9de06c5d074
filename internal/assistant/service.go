// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kinograph/kinograph/internal/metrics"
	"github.com/kinograph/kinograph/internal/session"
)

const (
	quizPrompt = "Ask me a single, fun, and challenging movie trivia question. Only output the question, nothing else."

	// fallbackQuestion keeps the quiz moving when the model rambles
	// without producing an extractable question.
	fallbackQuestion = "Which movie won the Oscar for Best Picture in 1994?"
)

// questionPattern grabs the first question-shaped sentence from the
// model output: everything up to a '?' that contains no terminator.
var questionPattern = regexp.MustCompile(`([^\n.!?]*\?)`)

// ErrNoPendingQuestion is returned when an answer arrives without an
// open quiz question in the session.
var ErrNoPendingQuestion = errors.New("no pending quiz question")

// Service implements the chat and quiz flows on top of the completion
// client and the session store.
type Service struct {
	client *Client
	store  *session.Store
}

// NewService wires the completion client to the session store.
func NewService(client *Client, store *session.Store) *Service {
	return &Service{client: client, store: store}
}

// Enabled reports whether the assistant can produce completions.
func (s *Service) Enabled() bool { return s.client.Enabled() }

// Chat appends the user's message to the session transcript, completes
// against the whole transcript and appends the model's reply. The
// updated state is persisted and returned together with the reply.
func (s *Service) Chat(ctx context.Context, sessionID, userInput string) (*session.State, string, error) {
	st, err := s.store.GetOrCreate(sessionID)
	if err != nil {
		return nil, "", err
	}

	st.AppendChat(session.RoleUser, userInput)

	reply, err := s.client.Complete(ctx, chatPrompt(st.ChatHistory))
	if err != nil {
		metrics.AssistantRequests.WithLabelValues("chat", "error").Inc()
		// Keep the user's message even when the model is unreachable,
		// so a retry continues the same conversation.
		if putErr := s.store.Put(st); putErr != nil {
			return nil, "", putErr
		}
		return st, "", fmt.Errorf("chat completion: %w", err)
	}
	metrics.AssistantRequests.WithLabelValues("chat", "ok").Inc()

	answer := extractReply(reply)
	st.AppendChat(session.RoleAssistant, answer)
	if err := s.store.Put(st); err != nil {
		return nil, "", err
	}
	return st, answer, nil
}

// QuizQuestion asks the model for a fresh trivia question and marks
// the session as awaiting an answer. When a question is already open
// it is returned again instead of minting a new one.
func (s *Service) QuizQuestion(ctx context.Context, sessionID string) (*session.State, string, error) {
	st, err := s.store.GetOrCreate(sessionID)
	if err != nil {
		return nil, "", err
	}
	if st.AwaitingQuizAnswer && st.QuizQuestion != "" {
		return st, st.QuizQuestion, nil
	}

	raw, err := s.client.Complete(ctx, quizPrompt)
	if err != nil {
		metrics.AssistantRequests.WithLabelValues("quiz_question", "error").Inc()
		return st, "", fmt.Errorf("quiz question: %w", err)
	}
	metrics.AssistantRequests.WithLabelValues("quiz_question", "ok").Inc()

	st.QuizQuestion = extractQuestion(raw)
	st.AwaitingQuizAnswer = true
	if err := s.store.Put(st); err != nil {
		return nil, "", err
	}
	return st, st.QuizQuestion, nil
}

// QuizAnswer grades the user's answer to the open question, archives
// the round and clears the pending state.
func (s *Service) QuizAnswer(ctx context.Context, sessionID, answer string) (*session.State, string, error) {
	st, err := s.store.GetOrCreate(sessionID)
	if err != nil {
		return nil, "", err
	}
	if !st.AwaitingQuizAnswer || st.QuizQuestion == "" {
		return st, "", ErrNoPendingQuestion
	}

	checkPrompt := fmt.Sprintf(
		"Question: %s\nUser Answer: %s\nIs this correct? If not, give the correct answer.",
		st.QuizQuestion, answer,
	)
	feedback, err := s.client.Complete(ctx, checkPrompt)
	if err != nil {
		metrics.AssistantRequests.WithLabelValues("quiz_answer", "error").Inc()
		return st, "", fmt.Errorf("quiz answer check: %w", err)
	}
	metrics.AssistantRequests.WithLabelValues("quiz_answer", "ok").Inc()

	feedback = strings.TrimSpace(feedback)
	st.RecordQuizRound(answer, feedback)
	if err := s.store.Put(st); err != nil {
		return nil, "", err
	}
	return st, feedback, nil
}

// chatPrompt renders the transcript in the "User:/Assistant:" format
// the model continues from, ending with an open assistant turn.
func chatPrompt(history []session.Message) string {
	var b strings.Builder
	for _, msg := range history {
		if msg.Role == session.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

// extractReply keeps only the text after the last open assistant turn.
// The model tends to echo the whole transcript back.
func extractReply(generated string) string {
	parts := strings.Split(generated, "Assistant:")
	return strings.TrimSpace(parts[len(parts)-1])
}

// extractQuestion pulls the first question out of the model output,
// falling back to a stock question when none is found.
func extractQuestion(raw string) string {
	if m := questionPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallbackQuestion
}
