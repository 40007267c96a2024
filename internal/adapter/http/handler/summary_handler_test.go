package handler_test

import (
	"errors"
	"net/http"

	. "github.com/onsi/gomega"

	"todosync/internal/core/domain"
	"todosync/internal/core/model/response"
)

func (s *TodoHandlerSuite) TestSummarizeNothingPending() {
	todo := s.createTodo("alice", nil)
	completed := domain.TodoStateCompleted
	s.TodoRepo.Update(ctx, todo.ID, domain.TodoPatch{State: &completed})

	rr := s.request("POST", "/summarize", "alice", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.MessageResponse](rr).Message).To(Equal("No pending todos to summarize."))
	Expect(s.Generator.Calls).To(Equal(0))
	Expect(s.Notifier.Calls).To(Equal(0))
}

func (s *TodoHandlerSuite) TestSummarizeSuccess() {
	s.createTodo("alice", map[string]any{"Title": "Buy milk", "Description": "2 liters"})
	s.createTodo("bob", map[string]any{"Title": "Someone else's"})

	rr := s.request("POST", "/summarize", "alice", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	body := decode[response.SummaryResponse](rr)
	Expect(body.Message).To(Equal("Summary sent to Slack successfully."))
	Expect(body.Summary).To(Equal("Shop first, then call mom."))

	Expect(s.Generator.Calls).To(Equal(1))
	Expect(s.Generator.Prompts[0]).To(ContainSubstring("- Buy milk: 2 liters"))
	Expect(s.Generator.Prompts[0]).ToNot(ContainSubstring("Someone else's"))
	Expect(s.Notifier.Messages).To(Equal([]string{"Todo Summary:\nShop first, then call mom."}))
}

func (s *TodoHandlerSuite) TestSummarizeGenerationFailure() {
	s.createTodo("alice", nil)
	s.Generator.Err = errors.New("quota exceeded")

	rr := s.request("POST", "/summarize", "alice", "")

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(errorOf(rr)).To(Equal("Failed to generate summary with AI."))
	Expect(s.Generator.Calls).To(Equal(1))
	Expect(s.Notifier.Calls).To(Equal(0))
}

func (s *TodoHandlerSuite) TestSummarizeDeliveryFailure() {
	s.createTodo("alice", nil)
	s.Notifier.Err = errors.New("webhook returned 404")

	rr := s.request("POST", "/summarize", "alice", "")

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(errorOf(rr)).To(Equal("Failed to send summary to Slack."))
	Expect(s.Notifier.Calls).To(Equal(1))
}

func (s *TodoHandlerSuite) TestSummarizeRequiresAuth() {
	rr := s.request("POST", "/summarize", "", "")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(s.Generator.Calls).To(Equal(0))
}
