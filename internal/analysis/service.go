package analysis

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"tender-backend/internal/ai"
	"tender-backend/internal/budget"
	"tender-backend/internal/cache"
	"tender-backend/internal/extract"
	"tender-backend/internal/queue"
	"tender-backend/internal/shared/metrics"
	"tender-backend/internal/shared/storage/object"
	"tender-backend/internal/shared/telemetry"
	"tender-backend/internal/tenders"
)

const defaultStepTimeout = 120 * time.Second

// estOutputTokens is the max_tokens budgeted per analysis call, used
// for pre-call authorization.
const estOutputTokens = 4000

// Service orchestrates analysis jobs. One goroutine per in-flight job;
// the repo snapshot is the only state polling reads.
type Service struct {
	Repo     Repo
	Tenders  *tenders.Service
	Budget   *budget.Service
	Cache    *cache.Store
	Store    object.ObjectStore
	Analyzer ai.Analyzer
	Searcher ai.Searcher
	Queue    queue.Client
	Model    string
	Profile  CompanyProfile
	// StepTimeout bounds each pipeline step so a hung provider turns
	// into a job error instead of a stuck running job.
	StepTimeout time.Duration
}

func (s *Service) stepTimeout() time.Duration {
	if s.StepTimeout > 0 {
		return s.StepTimeout
	}
	return defaultStepTimeout
}

func (s *Service) profile() CompanyProfile {
	if len(s.Profile.Capabilities) == 0 {
		return DefaultCompanyProfile()
	}
	return s.Profile
}

// RecoverStale errors out jobs left queued or running by a previous
// process. Called once on startup before serving requests.
func (s *Service) RecoverStale(ctx context.Context) error {
	count, err := s.Repo.FailStaleRunning(ctx, ErrorCodeInternal, "analysis interrupted by restart")
	if err != nil {
		return err
	}
	if count > 0 {
		telemetry.Warn("analysisStaleRecovered", map[string]any{"count": count})
	}
	return nil
}

// Start creates a fresh job for the tender and begins execution
// asynchronously. A queued or running job for the same id rejects the
// start with ErrAlreadyRunning.
func (s *Service) Start(ctx context.Context, tenderID string, sc StartContext) error {
	if strings.TrimSpace(tenderID) == "" {
		return ErrNotFound
	}

	job := Job{
		TenderID:  tenderID,
		Status:    StatusQueued,
		Progress:  0,
		Step:      "queued",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.CreateOrReplace(ctx, job); err != nil {
		return err
	}

	if s.Tenders != nil {
		// Re-starting without metadata must not blank out an existing record.
		_, getErr := s.Tenders.Get(ctx, tenderID)
		if errors.Is(getErr, tenders.ErrNotFound) || sc.TenderName != "" || sc.ReferenceNumber != "" {
			err := s.Tenders.Register(ctx, tenders.Tender{
				ID:              tenderID,
				Name:            sc.TenderName,
				ReferenceNumber: sc.ReferenceNumber,
			})
			if err != nil {
				telemetry.Warn("tenderRegisterFailed", map[string]any{
					"tenderId": tenderID,
					"error":    err.Error(),
				})
			}
		}
	}

	if s.Queue != nil {
		msg := queue.Message{
			TenderID:   tenderID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err == nil {
			return nil
		} else {
			// Fall back to in-process execution so the accepted job
			// still runs.
			telemetry.Warn("analysisEnqueueFailed", map[string]any{
				"tenderId": tenderID,
				"error":    err.Error(),
			})
		}
	}

	go s.completeAsync(backgroundWithRequestID(ctx), tenderID)
	return nil
}

// StartBatch starts jobs for up to maxBatchSize tenders. An oversized
// list fails before any job starts; individual failures land in the
// failed list without rejecting the rest.
func (s *Service) StartBatch(ctx context.Context, tenderIDs []string) (started, failed []string, err error) {
	if len(tenderIDs) > maxBatchSize {
		return nil, nil, ErrTooManyTenders
	}

	started = []string{}
	failed = []string{}
	for _, id := range tenderIDs {
		if startErr := s.Start(ctx, id, StartContext{}); startErr != nil {
			failed = append(failed, id)
			continue
		}
		started = append(started, id)
	}
	return started, failed, nil
}

// Status returns the latest published job snapshot. It never blocks on
// the job's own execution.
func (s *Service) Status(ctx context.Context, tenderID string) (Job, error) {
	if strings.TrimSpace(tenderID) == "" {
		return Job{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, tenderID)
}

// Result returns the terminal payload, failing with ErrNotReady until
// the job completes.
func (s *Service) Result(ctx context.Context, tenderID string) (*Result, error) {
	job, err := s.Status(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusCompleted || job.Result == nil {
		return nil, ErrNotReady
	}
	return job.Result, nil
}

// ProcessJob runs one job synchronously. Queue workers call this for
// dequeued messages.
func (s *Service) ProcessJob(ctx context.Context, tenderID string) error {
	s.completeAsync(ctx, tenderID)
	return nil
}

func (s *Service) completeAsync(ctx context.Context, tenderID string) {
	var costs budget.Costs

	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, tenderID, fmt.Errorf("panic: %v", r), nil, costs)
		}
	}()

	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateProgress(ctx, tenderID, StatusRunning, 0, StepFetchingDocuments, &startedAt); err != nil {
		s.failJob(ctx, tenderID, fmt.Errorf("set running failed: %w", err), &startedAt, costs)
		return
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysisStatus", map[string]any{
		"requestId":        requestIDFromContext(ctx),
		"tenderId":         tenderID,
		"status":           StatusRunning,
		"statusTransition": "queued->running",
	})

	if s.Analyzer == nil {
		s.failJob(ctx, tenderID, fmt.Errorf("analyzer: %w", ai.ErrNotConfigured), &startedAt, costs)
		return
	}

	tender, _ := s.tenderRecord(ctx, tenderID)

	// Step 1: fetching documents.
	var tenderText string
	err := s.runStep(ctx, tenderID, StepFetchingDocuments, func(stepCtx context.Context) error {
		text, err := s.fetchTenderText(stepCtx, tenderID, tender)
		if err != nil {
			return err
		}
		tenderText = text
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	// Step 2: analyzing requirements.
	var requirements requirementsAnalysis
	err = s.runStep(ctx, tenderID, StepAnalyzingRequirements, func(stepCtx context.Context) error {
		parsed, stepCosts, err := s.analyzeRequirements(stepCtx, tenderID, tenderText)
		if err != nil {
			return err
		}
		requirements = parsed
		addAnthropic(&costs, stepCosts)
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	// Step 3: market research.
	var market marketData
	err = s.runStep(ctx, tenderID, StepMarketResearch, func(stepCtx context.Context) error {
		data, numSearches, err := s.researchMarketStep(stepCtx, tenderID, tender.Name, tender.Activity)
		if err != nil {
			return err
		}
		market = data
		addTavily(&costs, numSearches)
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	// Steps 4 and 5 are pure computation over what the paid steps produced.
	var financial Financial
	err = s.runStep(ctx, tenderID, StepFinancialModeling, func(context.Context) error {
		financial = evaluateFinancials(tenderText, requirements)
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	var technical Technical
	err = s.runStep(ctx, tenderID, StepTechnicalEvaluation, func(context.Context) error {
		technical = evaluateTechnical(requirements, tenderText, s.profile())
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	// Step 6: generating reports.
	recommendation := buildRecommendation(requirements, technical)
	marketSummary := Market{
		SimilarTenders: len(market.SimilarTenders),
		SuppliersFound: len(market.Suppliers),
	}
	completedAt := time.Now().UTC()

	var reports Reports
	err = s.runStep(ctx, tenderID, StepGeneratingReports, func(stepCtx context.Context) error {
		rendered, err := generateReports(stepCtx, s.Store, tenderID, tender.Name,
			requirements, financial, technical, marketSummary, recommendation, completedAt)
		if err != nil {
			return err
		}
		reports = rendered
		return nil
	})
	if err != nil {
		s.failJob(ctx, tenderID, err, &startedAt, costs)
		return
	}

	result := &Result{
		TenderID:       tenderID,
		Reports:        reports,
		Recommendation: recommendation,
		Financial:      financial,
		Technical:      technical,
		Market:         marketSummary,
		GeneratedAt:    completedAt,
	}
	if err := s.Repo.SetResult(ctx, tenderID, result, completedAt); err != nil {
		s.failJob(ctx, tenderID, fmt.Errorf("set analysis result failed: %w", err), &startedAt, costs)
		return
	}

	s.trackCosts(ctx, tenderID, costs)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("analysisStatus", map[string]any{
		"requestId":        requestIDFromContext(ctx),
		"tenderId":         tenderID,
		"status":           StatusCompleted,
		"statusTransition": "running->completed",
		"durationMs":       durationMs(startedAt, completedAt),
		"analysisCost":     costs.Total,
	})
}

// runStep publishes the step's progress then executes it under the
// per-step deadline.
func (s *Service) runStep(ctx context.Context, tenderID, step string, fn func(context.Context) error) error {
	if err := s.Repo.UpdateProgress(ctx, tenderID, StatusRunning, stepProgress[step], step, nil); err != nil {
		return fmt.Errorf("publish step %q: %w", step, err)
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout())
	defer cancel()

	err := fn(stepCtx)
	if err != nil && stepCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("step %q timed out after %s: %w", step, s.stepTimeout(), context.DeadlineExceeded)
	}
	if err != nil {
		return fmt.Errorf("step %q: %w", step, err)
	}
	return nil
}

func (s *Service) tenderRecord(ctx context.Context, tenderID string) (tenders.Tender, error) {
	if s.Tenders == nil {
		return tenders.Tender{ID: tenderID}, nil
	}
	tender, err := s.Tenders.Get(ctx, tenderID)
	if err != nil {
		return tenders.Tender{ID: tenderID}, err
	}
	return tender, nil
}

// fetchTenderText loads and extracts every stored attachment for the
// tender. The extracted bundle is cached so re-runs read it for free.
func (s *Service) fetchTenderText(ctx context.Context, tenderID string, tender tenders.Tender) (string, error) {
	key := cache.Key(tenderID, "documents")
	var text string
	err := s.Cache.GetOrCompute(ctx, cache.CategoryDocument, key, &text, func(ctx context.Context) (any, error) {
		text, err := s.extractAttachments(ctx, tenderID)
		if err != nil {
			return nil, err
		}
		if text == "" {
			text = metadataText(tender)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *Service) extractAttachments(ctx context.Context, tenderID string) (string, error) {
	if s.Store == nil {
		return "", nil
	}
	keys, err := s.Store.List(ctx, tenderID+"/")
	if err != nil {
		return "", fmt.Errorf("list attachments: %w", err)
	}

	var parts []string
	for _, key := range keys {
		if strings.Contains(key, "/reports/") || strings.HasSuffix(key, ".extracted.txt") {
			continue
		}
		text, err := extract.Text(ctx, s.Store, key, "", path.Base(key))
		if err != nil {
			telemetry.Warn("attachmentExtractFailed", map[string]any{
				"tenderId": tenderID,
				"key":      key,
				"error":    sanitizeError(err),
			})
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) > 0 && s.Tenders != nil {
		if err := s.Tenders.MarkDownloaded(ctx, tenderID); err != nil && !errors.Is(err, tenders.ErrNotFound) {
			telemetry.Warn("markDownloadedFailed", map[string]any{
				"tenderId": tenderID,
				"error":    err.Error(),
			})
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// analyzeRequirements runs the paid analysis call behind the cache and
// the budget gate.
func (s *Service) analyzeRequirements(ctx context.Context, tenderID, tenderText string) (requirementsAnalysis, budget.AnthropicCost, error) {
	var callCosts budget.AnthropicCost

	key := cache.Key(tenderID, "requirements", s.Model)
	var parsed requirementsAnalysis
	err := s.Cache.GetOrCompute(ctx, cache.CategoryAnalysis, key, &parsed, func(ctx context.Context) (any, error) {
		prompt := buildAnalysisPrompt(tenderText, s.profile().Summary())

		estimated := budget.AnthropicCostFor(len(prompt)/4, estOutputTokens, s.Model)
		allowed, err := s.Budget.Authorize(ctx, budget.ServiceAnthropic, estimated)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("analysis call for %.4f USD: %w", estimated, budget.ErrExceeded)
		}

		analyzer := newRetryingAnalyzer(s.Analyzer, tenderID, requestIDFromContext(ctx))
		out, err := analyzer.Analyze(ctx, ai.AnalyzeInput{
			System:    analysisSystemPrompt,
			Prompt:    prompt,
			MaxTokens: estOutputTokens,
		})
		if err != nil {
			return nil, err
		}

		callCosts = budget.AnthropicCost{
			InputTokens:  out.InputTokens,
			OutputTokens: out.OutputTokens,
			Cost:         budget.AnthropicCostFor(out.InputTokens, out.OutputTokens, s.Model),
		}
		return parseRequirements(out.Text), nil
	})
	if err != nil {
		return requirementsAnalysis{}, callCosts, err
	}
	return parsed, callCosts, nil
}

// researchMarketStep runs the paid searches behind the cache and the
// budget gate.
func (s *Service) researchMarketStep(ctx context.Context, tenderID, tenderName, activity string) (marketData, int, error) {
	numSearches := 0

	key := cache.Key(tenderID, "market")
	var data marketData
	err := s.Cache.GetOrCompute(ctx, cache.CategorySearch, key, &data, func(ctx context.Context) (any, error) {
		search := s.paidSearch(tenderID)
		if search == nil {
			return marketData{}, nil
		}
		data, err := researchMarket(ctx, search, tenderName, activity)
		if err != nil {
			return nil, err
		}
		numSearches = data.NumSearches
		return data, nil
	})
	if err != nil {
		return marketData{}, 0, err
	}
	return data, numSearches, nil
}

func (s *Service) paidSearch(tenderID string) searchFn {
	if s.Searcher == nil {
		return nil
	}
	return func(ctx context.Context, query string, maxResults int) (ai.SearchOutput, error) {
		estimated := budget.TavilyCostFor(1)
		allowed, err := s.Budget.Authorize(ctx, budget.ServiceTavily, estimated)
		if err != nil {
			return ai.SearchOutput{}, err
		}
		if !allowed {
			return ai.SearchOutput{}, fmt.Errorf("search for %.4f USD: %w", estimated, budget.ErrExceeded)
		}
		out, err := s.Searcher.Search(ctx, query, maxResults)
		if err != nil {
			telemetry.Warn("marketSearchFailed", map[string]any{
				"tenderId": tenderID,
				"error":    sanitizeError(err),
			})
			return ai.SearchOutput{}, err
		}
		return out, nil
	}
}

func (s *Service) failJob(ctx context.Context, tenderID string, err error, startedAt *time.Time, costs budget.Costs) {
	code := classifyFailure(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.SetError(context.Background(), tenderID, code, sanitizeError(err), completedAt); updateErr != nil {
		telemetry.Error("analysisFailUpdate", map[string]any{
			"tenderId": tenderID,
			"error":    updateErr.Error(),
			"cause":    sanitizeError(err),
		})
	}

	// Paid calls that already happened still cost money even when the
	// job fails afterwards. Record them without counting an analysis.
	if s.Budget != nil {
		if costs.Anthropic.Cost > 0 {
			if chargeErr := s.Budget.Charge(ctx, budget.ServiceAnthropic, costs.Anthropic.Cost); chargeErr != nil {
				telemetry.Error("chargeFailed", map[string]any{"tenderId": tenderID, "error": chargeErr.Error()})
			}
		}
		if costs.Tavily.Cost > 0 {
			if chargeErr := s.Budget.Charge(ctx, budget.ServiceTavily, costs.Tavily.Cost); chargeErr != nil {
				telemetry.Error("chargeFailed", map[string]any{"tenderId": tenderID, "error": chargeErr.Error()})
			}
		}
	}

	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(*startedAt, completedAt))
	}
	telemetry.Error("analysisStatus", map[string]any{
		"requestId":        requestIDFromContext(ctx),
		"tenderId":         tenderID,
		"status":           StatusError,
		"statusTransition": "running->error",
		"errorCode":        code,
		"error":            sanitizeError(err),
	})
}

func (s *Service) trackCosts(ctx context.Context, tenderID string, costs budget.Costs) {
	if s.Budget == nil || costs.Total == 0 {
		return
	}
	if err := s.Budget.TrackAnalysis(ctx, tenderID, costs); err != nil {
		telemetry.Error("trackAnalysisFailed", map[string]any{
			"tenderId": tenderID,
			"error":    err.Error(),
		})
	}
}

// metadataText builds a minimal analysis input for tenders with no
// stored attachments, so the pipeline still produces a result.
func metadataText(tender tenders.Tender) string {
	var b strings.Builder
	b.WriteString("Tender ID: " + tender.ID + "\n")
	if tender.Name != "" {
		b.WriteString("Tender Name: " + tender.Name + "\n")
	}
	if tender.ReferenceNumber != "" {
		b.WriteString("Reference Number: " + tender.ReferenceNumber + "\n")
	}
	if tender.Agency != "" {
		b.WriteString("Agency: " + tender.Agency + "\n")
	}
	if tender.Activity != "" {
		b.WriteString("Activity: " + tender.Activity + "\n")
	}
	return b.String()
}

func buildRecommendation(requirements requirementsAnalysis, technical Technical) Recommendation {
	shouldBid := false
	switch strings.ToUpper(requirements.Recommendation) {
	case "PROCEED":
		shouldBid = true
	case "CONSIDER":
		shouldBid = technical.FeasibilityScore >= 60
	}

	priority := requirements.Priority
	if priority == "" {
		priority = "Medium"
	}

	strengths := requirements.KeyStrengths
	if strengths == nil {
		strengths = []string{}
	}
	concerns := requirements.KeyConcerns
	if concerns == nil {
		concerns = []string{}
	}

	return Recommendation{
		ShouldBid:    shouldBid,
		Priority:     priority,
		KeyStrengths: strengths,
		KeyConcerns:  concerns,
	}
}

func addAnthropic(costs *budget.Costs, call budget.AnthropicCost) {
	costs.Anthropic.InputTokens += call.InputTokens
	costs.Anthropic.OutputTokens += call.OutputTokens
	costs.Anthropic.Cost += call.Cost
	costs.Total += call.Cost
}

func addTavily(costs *budget.Costs, numSearches int) {
	if numSearches <= 0 {
		return
	}
	cost := budget.TavilyCostFor(numSearches)
	costs.Tavily.NumSearches += numSearches
	costs.Tavily.Cost += cost
	costs.Total += cost
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ErrorCodeInternal
	case errors.Is(err, budget.ErrExceeded):
		return ErrorCodeBudgetExceeded
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeStepTimeout
	case errors.Is(err, ai.ErrNotConfigured):
		return ErrorCodeUpstreamUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unsupported attachment"):
		return ErrorCodeExtraction
	case strings.Contains(msg, "list attachments") || strings.Contains(msg, "save") && strings.Contains(msg, "report"):
		return ErrorCodeStorage
	case strings.Contains(msg, "status 5") || strings.Contains(msg, "overloaded") || strings.Contains(msg, "connection"):
		return ErrorCodeUpstreamUnavailable
	default:
		return ErrorCodeInternal
	}
}
