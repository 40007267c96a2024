package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	tel "todosync/internal/core/telemetry"
)

const (
	summaryServiceName = "summary"
	SummarySentMessage = "Summary sent to Slack successfully."
)

var errBlankSummary = errors.New("generator returned a blank summary")

type SummaryService struct {
	repo      port.TodoRepository
	generator port.SummaryGenerator
	notifier  port.Notifier
	telemetry port.Telemetry
	metrics   *tel.AppMetrics
}

func NewSummaryService(repo port.TodoRepository, generator port.SummaryGenerator, notifier port.Notifier, telemetry port.Telemetry, metrics *tel.AppMetrics) *SummaryService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &SummaryService{
		repo:      repo,
		generator: generator,
		notifier:  notifier,
		telemetry: telemetry,
		metrics:   metrics,
	}
}

var _ port.SummaryService = (*SummaryService)(nil)

// Summarize reads the caller's pending todos, asks the generator for a summary and posts it.
// Nothing is sent when there are no pending todos or when generation fails.
func (ss *SummaryService) Summarize(ctx context.Context, userID string) (summary domain.Summary, err error) {
	ctx, span := ss.telemetry.StartServiceSpan(ctx, summaryServiceName, "Summarize", userID, nil)
	startTime := time.Now()
	outcome := "sent"

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus("error", err.Error())
		} else {
			span.SetStatus("ok", "")
		}
		span.SetAttributes(map[string]any{"summary.outcome": outcome})

		if ss.metrics != nil {
			ss.metrics.RecordSummaryOutcome(ctx, outcome)
		}
		ss.telemetry.RecordServiceOperation(ctx, summaryServiceName, "Summarize", userID, time.Since(startTime), err)
		span.End()
	}()

	pending, err := ss.repo.ListByOwnerAndState(ctx, userID, domain.TodoStatePending)
	if err != nil {
		outcome = "storage_failed"
		return domain.Summary{}, err
	}

	if len(pending) == 0 {
		outcome = "empty"
		return domain.Summary{}, domain.ErrNothingToSummarize
	}

	span.SetAttributes(map[string]any{"summary.pending_count": len(pending)})

	text, err := ss.generator.Generate(ctx, BuildSummaryPrompt(pending))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errBlankSummary
	}
	if err != nil {
		outcome = "generation_failed"
		return domain.Summary{}, &domain.UpstreamError{Stage: domain.StageGeneration, Err: err}
	}

	if err = ss.notifier.Notify(ctx, SlackText(text)); err != nil {
		outcome = "delivery_failed"
		return domain.Summary{}, &domain.UpstreamError{Stage: domain.StageDelivery, Err: err}
	}

	ss.telemetry.RecordBusinessEvent(ctx, "summary_sent", "summary", "", userID, map[string]any{
		"pending_count": len(pending),
	})

	return domain.Summary{Message: SummarySentMessage, Summary: text}, nil
}
