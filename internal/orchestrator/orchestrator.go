package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/logging"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/pipeline"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/roles"
)

// Orchestrator drives one conversion through the staged pipeline.
type Orchestrator struct {
	reader    *pipeline.Reader
	planner   *pipeline.Planner
	validator *pipeline.Validator
	generator *pipeline.Generator

	model             string
	maxRetries        int
	warningRetryLimit int

	logger  *logging.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New wires the four stages around a shared enhancer. The enhancer may
// be disabled; every stage then runs purely rule-based.
func New(enhancer *pipeline.Enhancer, cfg config.PipelineConfig, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("orchestrator")
	return &Orchestrator{
		reader:            pipeline.NewReader(enhancer),
		planner:           pipeline.NewPlanner(roles.NewInferencer(), enhancer),
		validator:         pipeline.NewValidator(),
		generator:         pipeline.NewGenerator(enhancer),
		model:             enhancer.ProviderName(),
		maxRetries:        cfg.MaxRetries,
		warningRetryLimit: cfg.WarningRetryLimit,
		logger:            logger,
		metrics:           NewMetrics(logger),
		tracer:            otel.Tracer(instrumentationName),
	}
}

// Convert turns free-form process text into a business definition. It
// returns a *ValidationError when blocking issues survive the retry
// budget; any other error means the pipeline itself failed.
func (o *Orchestrator) Convert(ctx context.Context, input string) (*Result, error) {
	conversionID := uuid.NewString()
	ctx = logging.WithConversionID(ctx, conversionID)
	ctx, span := o.tracer.Start(ctx, "orchestrator.convert",
		trace.WithAttributes(attribute.Int("input_length", len(input))))
	defer span.End()

	start := time.Now()
	logs := []AgentLog{}
	usages := []pipeline.UsageRecord{}

	extraction, readerUsage := o.runReader(ctx, input, &logs)
	usages = append(usages, readerUsage)

	plan, validation, retries, accepted := o.planAndValidate(ctx, extraction, &logs, &usages)

	if blocking := validation.BlockingIssues(); len(blocking) > 0 {
		err := &ValidationError{Retries: retries, Issues: blocking}
		span.RecordError(err)
		span.SetAttributes(attribute.Int("retries", retries))
		o.logger.WarnContext(ctx, "conversion rejected",
			zap.Int("retries", retries),
			zap.Strings("issues", blocking))
		o.metrics.RecordConversion(ctx, outcomeValidationFailed, retries, time.Since(start))
		return nil, err
	}

	def, genUsage, err := o.runGenerator(ctx, extraction, plan, validation, &logs)
	usages = append(usages, genUsage)
	if err != nil {
		span.RecordError(err)
		o.logger.ErrorContext(ctx, "generation failed", zap.Error(err))
		o.metrics.RecordConversion(ctx, outcomeError, retries, time.Since(start))
		return nil, fmt.Errorf("generating definition: %w", err)
	}

	meta := buildMeta(conversionID, o.model, retries, extraction, plan, validation, usages)
	for _, usage := range usages {
		o.metrics.RecordUsage(ctx, usage)
	}

	span.SetAttributes(
		attribute.Int("retries", retries),
		attribute.Bool("warnings_accepted", accepted),
		attribute.Int("tasks", len(def.Tasks)),
	)
	o.logger.InfoContext(ctx, "conversion complete",
		zap.Int("retries", retries),
		zap.Int("tasks", len(def.Tasks)),
		zap.Int("roles", len(def.Roles)),
		zap.Bool("warnings_accepted", accepted))
	o.metrics.RecordConversion(ctx, outcomeSuccess, retries, time.Since(start))

	return &Result{Definition: def, AgentLogs: logs, Meta: meta}, nil
}

func (o *Orchestrator) runReader(ctx context.Context, input string, logs *[]AgentLog) (pipeline.Extraction, pipeline.UsageRecord) {
	start := time.Now()
	extraction, usage := o.reader.Read(ctx, input)
	o.metrics.RecordStage(ctx, "reader", time.Since(start))

	*logs = append(*logs, AgentLog{
		Step: "reader",
		Summary: fmt.Sprintf("entities=%d actions=%d people=%d",
			len(extraction.EntityNames), len(extraction.Actions), len(extraction.Entities.People)),
	})
	o.logger.DebugContext(ctx, "reader finished",
		zap.Int("actions", len(extraction.Actions)),
		zap.Int("actions_raw", len(extraction.ActionsRaw)),
		zap.Int("people", len(extraction.Entities.People)),
		zap.Bool("filter_fallback", extraction.FallbackUsed))
	return extraction, usage
}

// planAndValidate runs the bounded retry loop. It returns the last
// plan and validation, the retries consumed, and whether a
// warnings-only finding set was accepted.
func (o *Orchestrator) planAndValidate(ctx context.Context, extraction pipeline.Extraction, logs *[]AgentLog, usages *[]pipeline.UsageRecord) (pipeline.TaskPlan, pipeline.ValidationResult, int, bool) {
	retries := 0
	retryCtx := pipeline.RetryContext{}

	var plan pipeline.TaskPlan
	var validation pipeline.ValidationResult

	for {
		start := time.Now()
		var planUsage pipeline.UsageRecord
		plan, planUsage = o.planner.Plan(ctx, extraction, retryCtx)
		o.metrics.RecordStage(ctx, "planner", time.Since(start))
		*usages = append(*usages, planUsage)

		*logs = append(*logs, AgentLog{
			Step: "planner",
			Summary: fmt.Sprintf("tasks=%d roles=%d role_inference=%d",
				len(plan.Tasks), len(plan.Roles), len(plan.Trace)),
		})
		o.logger.DebugContext(ctx, "planner finished",
			zap.Int("attempt", retries),
			zap.Int("tasks", len(plan.Tasks)),
			zap.Int("roles", len(plan.Roles)),
			zap.String("corrective", retryCtx.Corrective.String()))

		start = time.Now()
		validation = o.validator.Validate(pipeline.ValidationRequest{
			Plan:               plan,
			Input:              extraction.Input,
			Actions:            extraction.Actions,
			ActionsFilteredOut: extraction.ActionsFilteredOut,
			People:             extraction.Entities.People,
		})
		o.metrics.RecordStage(ctx, "validator", time.Since(start))
		o.metrics.RecordIssues(ctx, validation)

		count := len(validation.Issues)
		*logs = append(*logs, AgentLog{
			Step:        "validator",
			Summary:     validatorSummary(validation.Issues),
			IssuesCount: &count,
		})
		o.logger.DebugContext(ctx, "validator finished",
			zap.Int("attempt", retries),
			zap.Int("issues", count),
			zap.Int("blocking", len(validation.BlockingIssues())))

		if count == 0 || retries >= o.maxRetries {
			return plan, validation, retries, false
		}

		if len(validation.BlockingIssues()) == 0 && retries >= o.warningRetryLimit {
			// Warnings that survive a retry are findings, not failures:
			// they stay in the issue details but stop blocking.
			validation.Issues = []string{}
			o.logger.InfoContext(ctx, "accepting warnings after retry",
				zap.Int("retries", retries))
			return plan, validation, retries, true
		}

		retries++
		retryCtx = nextRetryContext(retryCtx, retries, validation)
		o.logger.InfoContext(ctx, "retrying plan",
			zap.Int("attempt", retries),
			zap.Strings("issues", validation.Issues),
			zap.String("corrective", retryCtx.Corrective.String()))
	}
}

func (o *Orchestrator) runGenerator(ctx context.Context, extraction pipeline.Extraction, plan pipeline.TaskPlan, validation pipeline.ValidationResult, logs *[]AgentLog) (definition.BusinessDefinition, pipeline.UsageRecord, error) {
	start := time.Now()
	def, usage, err := o.generator.Generate(ctx, extraction, plan, validation)
	o.metrics.RecordStage(ctx, "generator", time.Since(start))
	if err != nil {
		return def, usage, err
	}

	*logs = append(*logs, AgentLog{
		Step:    "generator",
		Summary: fmt.Sprintf("tasks=%d roles=%d", len(def.Tasks), len(def.Roles)),
	})
	return def, usage, nil
}

// nextRetryContext accumulates corrective flags from the findings.
// Flags never reset between attempts: a fixed finding must not undo
// the correction that fixed it.
func nextRetryContext(prev pipeline.RetryContext, attempt int, validation pipeline.ValidationResult) pipeline.RetryContext {
	next := pipeline.RetryContext{
		Attempt:     attempt,
		PriorIssues: append([]string(nil), validation.Issues...),
		Corrective:  prev.Corrective,
	}
	for _, code := range validation.Issues {
		switch code {
		case "compound_text_single_task":
			next.Corrective |= pipeline.CorrectiveForceSplit
		case "non_business_task_detected":
			next.Corrective |= pipeline.CorrectiveAvoidNonBusiness
		}
	}
	return next
}

// validatorSummary renders the first two issue codes, or "passed".
func validatorSummary(issues []string) string {
	if len(issues) == 0 {
		return "passed"
	}
	shown := issues
	if len(shown) > 2 {
		shown = shown[:2]
	}
	return "issues: " + strings.Join(shown, ", ")
}

func buildMeta(conversionID, model string, retries int, extraction pipeline.Extraction, plan pipeline.TaskPlan, validation pipeline.ValidationResult, usages []pipeline.UsageRecord) Meta {
	var validatorIssues interface{}
	if len(validation.IssueDetails) > 0 {
		validatorIssues = validation.IssueDetails
	} else {
		validatorIssues = validation.Issues
	}

	return Meta{
		ConversionID:         conversionID,
		Retries:              retries,
		Model:                model,
		Actions:              extraction.Actions,
		ActionsRaw:           extraction.ActionsRaw,
		ActionsFilteredOut:   extraction.ActionsFilteredOut,
		ActionFilterVersion:  extraction.FilterVersion,
		ActionFilterFallback: extraction.FallbackUsed,
		Entities:             extraction.Entities,
		RoleInference:        plan.Trace,
		SplitterVersion:      extraction.SplitterVersion,
		CompoundDetected:     validation.CompoundDetected,
		ValidatorIssues:      validatorIssues,
		LLMUsage:             usages,
	}
}
