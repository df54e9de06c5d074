// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/session"
)

// fakeModel is a scriptable inference endpoint that records prompts.
type fakeModel struct {
	prompts []string
	reply   func(prompt string) string
}

func (f *fakeModel) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.prompts = append(f.prompts, req.Inputs)
		out, _ := json.Marshal([]generateResponse{{GeneratedText: f.reply(req.Inputs)}})
		w.Write(out)
	}
}

func newTestService(t *testing.T, model *fakeModel) *Service {
	t.Helper()
	srv := httptest.NewServer(model.handler())
	t.Cleanup(srv.Close)

	store, err := session.Open(config.SessionConfig{
		Path:       t.TempDir(),
		TTL:        time.Hour,
		GCInterval: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	client := testClient(srv.URL)
	return NewService(client, store)
}

func TestChatFlow(t *testing.T) {
	model := &fakeModel{reply: func(prompt string) string {
		// Echo the transcript back with a completion, as the hosted
		// model does.
		return prompt + " I recommend Blade Runner."
	}}
	svc := newTestService(t, model)
	ctx := context.Background()

	st, reply, err := svc.Chat(ctx, "", "Suggest a sci-fi movie")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if reply != "I recommend Blade Runner." {
		t.Errorf("reply = %q", reply)
	}
	if len(st.ChatHistory) != 2 {
		t.Fatalf("history len = %d, want user+assistant", len(st.ChatHistory))
	}

	// Second turn continues the same session and carries the history.
	_, _, err = svc.Chat(ctx, st.ID, "Something older?")
	if err != nil {
		t.Fatalf("second Chat() error: %v", err)
	}
	last := model.prompts[len(model.prompts)-1]
	if !strings.Contains(last, "User: Suggest a sci-fi movie") {
		t.Errorf("prompt lost first turn:\n%s", last)
	}
	if !strings.Contains(last, "Assistant: I recommend Blade Runner.") {
		t.Errorf("prompt lost assistant turn:\n%s", last)
	}
	if !strings.HasSuffix(last, "Assistant:") {
		t.Errorf("prompt must end with an open assistant turn:\n%s", last)
	}
}

func TestChatKeepsUserTurnOnModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	store, err := session.Open(config.SessionConfig{
		Path: t.TempDir(), TTL: time.Hour, GCInterval: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	svc := NewService(testClient(srv.URL), store)

	st, _, err := svc.Chat(context.Background(), "", "hello?")
	if err == nil {
		t.Fatal("Chat() = nil error against broken model")
	}
	if st == nil {
		t.Fatal("Chat() must still return the session")
	}

	persisted, err := store.Get(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted.ChatHistory) != 1 || persisted.ChatHistory[0].Role != session.RoleUser {
		t.Errorf("persisted history = %+v, want the user turn kept", persisted.ChatHistory)
	}
}

func TestQuizQuestionFlow(t *testing.T) {
	model := &fakeModel{reply: func(prompt string) string {
		return "Sure! Who directed the 1975 film Jaws? Good luck."
	}}
	svc := newTestService(t, model)
	ctx := context.Background()

	st, question, err := svc.QuizQuestion(ctx, "")
	if err != nil {
		t.Fatalf("QuizQuestion() error: %v", err)
	}
	// Only the first question-shaped sentence survives extraction.
	if question != "Who directed the 1975 film Jaws?" {
		t.Errorf("question = %q", question)
	}
	if !st.AwaitingQuizAnswer {
		t.Error("session not marked awaiting an answer")
	}

	// Asking again with the question still open repeats it.
	calls := len(model.prompts)
	_, again, err := svc.QuizQuestion(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again != question {
		t.Errorf("repeated question = %q, want %q", again, question)
	}
	if len(model.prompts) != calls {
		t.Error("open question must not trigger another model call")
	}
}

func TestQuizQuestionFallback(t *testing.T) {
	model := &fakeModel{reply: func(prompt string) string {
		return "I have no questions today. Sorry about that."
	}}
	svc := newTestService(t, model)

	_, question, err := svc.QuizQuestion(context.Background(), "")
	if err != nil {
		t.Fatalf("QuizQuestion() error: %v", err)
	}
	if question != fallbackQuestion {
		t.Errorf("question = %q, want fallback", question)
	}
}

func TestQuizAnswerFlow(t *testing.T) {
	model := &fakeModel{reply: func(prompt string) string {
		if strings.HasPrefix(prompt, "Question:") {
			return "Correct! Steven Spielberg directed Jaws."
		}
		return "Who directed Jaws?"
	}}
	svc := newTestService(t, model)
	ctx := context.Background()

	st, _, err := svc.QuizQuestion(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	st2, feedback, err := svc.QuizAnswer(ctx, st.ID, "Spielberg")
	if err != nil {
		t.Fatalf("QuizAnswer() error: %v", err)
	}
	if feedback != "Correct! Steven Spielberg directed Jaws." {
		t.Errorf("feedback = %q", feedback)
	}
	if st2.AwaitingQuizAnswer || st2.QuizQuestion != "" {
		t.Error("pending question not cleared after answer")
	}
	if len(st2.QuizHistory) != 1 || st2.QuizHistory[0].UserAnswer != "Spielberg" {
		t.Errorf("QuizHistory = %+v", st2.QuizHistory)
	}

	// The grading prompt carries question and answer verbatim.
	last := model.prompts[len(model.prompts)-1]
	if !strings.Contains(last, "Question: Who directed Jaws?") ||
		!strings.Contains(last, "User Answer: Spielberg") {
		t.Errorf("grading prompt = %q", last)
	}
}

func TestQuizAnswerWithoutQuestion(t *testing.T) {
	model := &fakeModel{reply: func(string) string { return "irrelevant" }}
	svc := newTestService(t, model)

	_, _, err := svc.QuizAnswer(context.Background(), "", "Spielberg")
	if !errors.Is(err, ErrNoPendingQuestion) {
		t.Errorf("err = %v, want ErrNoPendingQuestion", err)
	}
}
