package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"todosync/internal/adapter/database/sqlite"
	"todosync/internal/adapter/database/sqlite/repository"
	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	"todosync/internal/core/service"
	"todosync/internal/core/telemetry"
	. "todosync/pkg/test"
)

type SummaryServiceTestSuite struct {
	suite.Suite
	DB        *sqlite.DB
	Repo      port.TodoRepository
	Generator *CountingGenerator
	Notifier  *CountingNotifier
	Registry  *prometheus.Registry
	Metrics   *telemetry.AppMetrics
	Service   *service.SummaryService
}

func (s *SummaryServiceTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.Repo = repository.NewTodoRepository(s.DB, telemetry.NewNoOpProbe())
	s.Generator = &CountingGenerator{Result: "Do the shopping first."}
	s.Notifier = &CountingNotifier{}
	s.Registry = prometheus.NewRegistry()
	s.Metrics = telemetry.NewAppMetrics(s.Registry)
	s.Service = service.NewSummaryService(s.Repo, s.Generator, s.Notifier, nil, s.Metrics)
}

func (s *SummaryServiceTestSuite) TearDownTest() {
	s.DB.Close()
}

func TestSummaryServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(SummaryServiceTestSuite))
}

func (s *SummaryServiceTestSuite) expectOutcome(outcome string) {
	expected := `
# HELP summary_requests_total Summary pipeline runs by outcome
# TYPE summary_requests_total counter
summary_requests_total{outcome="` + outcome + `"} 1
`
	Expect(testutil.GatherAndCompare(s.Registry, strings.NewReader(expected), "summary_requests_total")).To(Succeed())
}

func (s *SummaryServiceTestSuite) TestNothingPending() {
	created, _ := s.Repo.Create(ctx, "alice", "done already", "")
	completed := domain.TodoStateCompleted
	s.Repo.Update(ctx, created.ID, domain.TodoPatch{State: &completed})

	_, err := s.Service.Summarize(ctx, "alice")

	Expect(err).To(MatchError(domain.ErrNothingToSummarize))
	Expect(s.Generator.Calls).To(Equal(0))
	Expect(s.Notifier.Calls).To(Equal(0))
	s.expectOutcome("empty")
}

func (s *SummaryServiceTestSuite) TestSendsPendingOnly() {
	s.Repo.Create(ctx, "alice", "Buy milk", "2 liters")
	done, _ := s.Repo.Create(ctx, "alice", "File taxes", "")
	s.Repo.Create(ctx, "bob", "Not mine", "")
	completed := domain.TodoStateCompleted
	s.Repo.Update(ctx, done.ID, domain.TodoPatch{State: &completed})

	summary, err := s.Service.Summarize(ctx, "alice")

	Expect(err).To(BeNil())
	Expect(summary.Message).To(Equal("Summary sent to Slack successfully."))
	Expect(summary.Summary).To(Equal("Do the shopping first."))

	Expect(s.Generator.Calls).To(Equal(1))
	Expect(s.Generator.Prompts[0]).To(ContainSubstring("\n- Buy milk: 2 liters"))
	Expect(s.Generator.Prompts[0]).NotTo(ContainSubstring("File taxes"))
	Expect(s.Generator.Prompts[0]).NotTo(ContainSubstring("Not mine"))

	Expect(s.Notifier.Messages).To(Equal([]string{"Todo Summary:\nDo the shopping first."}))
	s.expectOutcome("sent")
}

func (s *SummaryServiceTestSuite) TestGenerationFailureSkipsDelivery() {
	s.Repo.Create(ctx, "alice", "Buy milk", "")
	s.Generator.Err = errors.New("quota exceeded")

	_, err := s.Service.Summarize(ctx, "alice")

	var upstream *domain.UpstreamError
	Expect(errors.As(err, &upstream)).To(BeTrue())
	Expect(upstream.Stage).To(Equal(domain.StageGeneration))
	Expect(s.Notifier.Calls).To(Equal(0))
}

func (s *SummaryServiceTestSuite) TestBlankGenerationIsAFailure() {
	s.Repo.Create(ctx, "alice", "Buy milk", "")
	s.Generator.Result = "  \n"

	_, err := s.Service.Summarize(ctx, "alice")

	var upstream *domain.UpstreamError
	Expect(errors.As(err, &upstream)).To(BeTrue())
	Expect(upstream.Stage).To(Equal(domain.StageGeneration))
	Expect(s.Notifier.Calls).To(Equal(0))
}

func (s *SummaryServiceTestSuite) TestDeliveryFailure() {
	s.Repo.Create(ctx, "alice", "Buy milk", "")
	s.Notifier.Err = errors.New("webhook returned 500")

	_, err := s.Service.Summarize(ctx, "alice")

	var upstream *domain.UpstreamError
	Expect(errors.As(err, &upstream)).To(BeTrue())
	Expect(upstream.Stage).To(Equal(domain.StageDelivery))
	Expect(s.Generator.Calls).To(Equal(1))
	Expect(s.Notifier.Calls).To(Equal(1))
}

func TestBuildSummaryPromptIsOrderIndependent(t *testing.T) {
	RegisterTestingT(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := domain.Todo{ID: "a", Title: "Buy milk", Description: "2 liters", CreatedAt: base}
	b := domain.Todo{ID: "b", Title: "Call mom", CreatedAt: base.Add(time.Minute)}
	c := domain.Todo{ID: "c", Title: "Pay rent", Description: "before friday", CreatedAt: base.Add(time.Minute)}

	prompt := service.BuildSummaryPrompt([]domain.Todo{c, a, b})

	Expect(prompt).To(Equal(service.BuildSummaryPrompt([]domain.Todo{a, b, c})))
	Expect(prompt).To(HavePrefix("Analyze the following list of pending tasks."))
	Expect(prompt).To(HaveSuffix("Return only the summary paragraph.\n- Buy milk: 2 liters\n- Call mom: \n- Pay rent: before friday"))
	Expect(strings.Count(prompt, "\n- ")).To(Equal(3))
}
