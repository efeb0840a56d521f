// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/agent"
	"github.com/go-a2a/arovi/flow/llmflow"
	"github.com/go-a2a/arovi/tool/tools"
	"github.com/go-a2a/arovi/types"
)

// Agent names of the pipeline.
const (
	RootAgentName           = "arovi_root_agent"
	WorkflowAgentName       = "arovi_workflow_agent"
	IngestionAgentName      = "ingestion_parallel_agent"
	ClassificationAgentName = "classification_agent"
	TrendAgentName          = "trend_agent"
	DraftingAgentName       = "drafting_agent"
	RiskLoopAgentName       = "risk_loop_agent"
	RiskCheckerAgentName    = "risk_checker_agent"
	RedraftAgentName        = "redraft_agent"

	// PipelineToolName is the tool through which the root agent runs the workflow.
	PipelineToolName = "run_arovi_pipeline"
)

// DefaultModelName is the model used when [Options] names none.
const DefaultModelName = "gemini-2.5-flash"

// DefaultMaxRiskIterations bounds the review loop.
const DefaultMaxRiskIterations = 3

// Options configures the pipeline.
type Options struct {
	// Model, when set, is used by every language-model stage instead of ModelName.
	Model types.Model

	// ModelName is resolved through the model registry. Defaults to [DefaultModelName].
	ModelName string

	// MinRelevanceLen is the minimum public_health_relevance length kept by the dedupe tool.
	MinRelevanceLen int

	// MaxRiskIterations is the number of review rounds.
	MaxRiskIterations int

	// StopWhenSafe ends the review loop early on a safe report without issues.
	StopWhenSafe bool

	// URLContext lets the ingestion stages read the pages they find.
	URLContext bool

	// VerifySources gives the risk checker a tool to load cited pages.
	VerifySources bool

	// HTTPClient is used by the page loading tool.
	HTTPClient *http.Client

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ModelName == "" {
		o.ModelName = DefaultModelName
	}
	if o.MinRelevanceLen <= 0 {
		o.MinRelevanceLen = DefaultMinRelevanceLen
	}
	if o.MaxRiskIterations <= 0 {
		o.MaxRiskIterations = DefaultMaxRiskIterations
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// llmOptions returns the options shared by every language-model stage.
func (o Options) llmOptions() []agent.LLMAgentOption {
	opts := []agent.LLMAgentOption{agent.WithLogger(o.Logger)}
	if o.Model != nil {
		return append(opts, agent.WithModel(o.Model))
	}
	return append(opts, agent.WithModelName(o.ModelName))
}

type region struct {
	name   string
	label  string
	key    string
	bucket string
}

var regions = []region{
	{name: "global_news_agent", label: "global", key: KeyItemsGlobalRaw, bucket: RegionGlobal},
	{name: "us_news_agent", label: "national (country)", key: KeyItemsUSRaw, bucket: RegionNational},
	{name: "state_news_agent", label: "state or region", key: KeyItemsStateRaw, bucket: RegionState},
	{name: "city_news_agent", label: "city", key: KeyItemsCityRaw, bucket: RegionCity},
}

// NewWorkflow builds the sequential Arovi workflow:
// ingestion, classification, trends, drafting, the review loop and metrics.
func NewWorkflow(ctx context.Context, opts Options) (types.Agent, error) {
	opts = opts.withDefaults()

	ingestion, err := newIngestionAgent(ctx, opts)
	if err != nil {
		return nil, err
	}

	filter, err := NewFilterAndDedupeTool(opts.MinRelevanceLen)
	if err != nil {
		return nil, err
	}
	classifier, err := agent.NewLLMAgent(ctx, ClassificationAgentName, append(opts.llmOptions(),
		agent.WithDescription("Merges, filters, deduplicates and tags the regional news items."),
		agent.WithInstruction(classificationInstruction),
		agent.WithInputKeys(IngestionKeys...),
		agent.WithTools(filter),
		agent.WithOutputKey(KeyTaggedItemsRaw),
	)...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", ClassificationAgentName, err)
	}

	trends, err := agent.NewLLMAgent(ctx, TrendAgentName, append(opts.llmOptions(),
		agent.WithDescription("Summarizes trends, risks and positive developments."),
		agent.WithInstruction(trendInstruction),
		agent.WithInputKeys(KeyTaggedItems),
		agent.WithOutputKey(KeyTrendNotesRaw),
		agent.WithOutputSchema(trendNotesResponseSchema),
	)...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", TrendAgentName, err)
	}

	drafter, err := agent.NewLLMAgent(ctx, DraftingAgentName, append(opts.llmOptions(),
		agent.WithDescription("Writes the Markdown briefing."),
		agent.WithInstruction(draftInstruction),
		agent.WithInputKeys(append([]string{KeyTaggedItems, KeyTrendNotes}, RequestKeys...)...),
		agent.WithOutputKey(KeyBriefingDraft),
	)...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", DraftingAgentName, err)
	}

	riskLoop, err := newRiskLoop(ctx, opts)
	if err != nil {
		return nil, err
	}

	return agent.NewSequentialAgentWithOptions(WorkflowAgentName,
		types.WithSubAgents(
			ingestion,
			classifier,
			NewParserAgent("tagged_items_parser", KeyTaggedItemsRaw, KeyTaggedItems, ParseNewsItems),
			trends,
			NewParserAgent("trend_notes_parser", KeyTrendNotesRaw, KeyTrendNotes, ParseTrendNotes),
			drafter,
			riskLoop,
			NewMetricsAgent(),
		),
		types.WithInputKeys(KeyRequestCity, KeyRequestCountry, KeyRequestDate, KeyBriefingDraft, KeyBriefingRevised),
		types.WithOutputKeys(KeyRequestCountry, KeyRequestDate),
		types.WithBeforeAgentCallbacks(requireCity, seedRequestDefaults),
		types.WithAfterAgentCallbacks(logWorkflowOutcome(opts.Logger)),
		types.WithLogger(opts.Logger),
	), nil
}

// NoCityMessage answers a pipeline run whose request names no city.
const NoCityMessage = "No city was given, so no briefing was generated."

// requireCity ends the workflow before any stage runs when the request names no city.
func requireCity(cctx *types.CallbackContext) (*genai.Content, error) {
	if strings.TrimSpace(cctx.ReadOnlyContext.State().String(KeyRequestCity)) != "" {
		return nil, nil
	}
	return genai.NewContentFromText(NoCityMessage, genai.RoleModel), nil
}

// seedRequestDefaults fills the country and date the request left out, so
// every stage reads the same values.
func seedRequestDefaults(cctx *types.CallbackContext) (*genai.Content, error) {
	view := cctx.ReadOnlyContext.State()
	if strings.TrimSpace(view.String(KeyRequestCountry)) == "" {
		cctx.State().Set(KeyRequestCountry, DefaultCountry)
	}
	if strings.TrimSpace(view.String(KeyRequestDate)) == "" {
		cctx.State().Set(KeyRequestDate, DefaultDate)
	}
	return nil, nil
}

func logWorkflowOutcome(logger *slog.Logger) types.AgentCallback {
	return func(cctx *types.CallbackContext) (*genai.Content, error) {
		state := cctx.ReadOnlyContext.State()
		_, ok := FinalBriefing(state.ToMap())
		logger.Info("briefing workflow finished",
			slog.String("city", state.String(KeyRequestCity)),
			slog.String("briefing_key", currentDraftKey(state)),
			slog.Bool("has_briefing", ok),
		)
		return nil, nil
	}
}

func newIngestionAgent(ctx context.Context, opts Options) (types.Agent, error) {
	searchTools := []types.Tool{tools.NewGoogleSearchTool()}
	if opts.URLContext {
		searchTools = append(searchTools, tools.NewURLContextTool())
	}

	agents := make([]types.Agent, 0, len(regions))
	for _, r := range regions {
		a, err := agent.NewLLMAgent(ctx, r.name, append(opts.llmOptions(),
			agent.WithDescription(fmt.Sprintf("Finds %s public-health news.", r.label)),
			agent.WithInstruction(ingestionInstruction(r.label, r.bucket)),
			agent.WithInputKeys(RequestKeys...),
			agent.WithTools(searchTools...),
			agent.WithOutputKey(r.key),
		)...)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", r.name, err)
		}
		agents = append(agents, a)
	}

	return agent.NewParallelAgent(IngestionAgentName, agents...), nil
}

// currentDraftKey returns the key of the best briefing so far: the revision
// once one exists, the first draft otherwise.
func currentDraftKey(state types.StateView) string {
	if state.String(KeyBriefingRevised) != "" {
		return KeyBriefingRevised
	}
	return KeyBriefingDraft
}

func newRiskLoop(ctx context.Context, opts Options) (types.Agent, error) {
	var checkerTools []types.Tool
	if opts.VerifySources {
		checkerTools = append(checkerTools, tools.NewWebPageTool(opts.HTTPClient))
	}
	if opts.StopWhenSafe {
		checkerTools = append(checkerTools, tools.NewExitLoopTool())
	}

	checkerOpts := append(opts.llmOptions(),
		agent.WithDescription("Reviews the current briefing for unsafe content."),
		agent.WithInstructionProvider(func(rctx *types.ReadOnlyContext) string {
			state := rctx.State()
			return llmflow.InjectState(riskCheckInstruction(currentDraftKey(state), opts.StopWhenSafe), state)
		}),
		agent.WithInputKeys(KeyBriefingDraft, KeyBriefingRevised),
		agent.WithOutputKey(KeyRiskReportRaw),
	)
	if len(checkerTools) > 0 {
		checkerOpts = append(checkerOpts, agent.WithTools(checkerTools...))
	} else {
		checkerOpts = append(checkerOpts, agent.WithOutputSchema(riskReportResponseSchema))
	}
	checker, err := agent.NewLLMAgent(ctx, RiskCheckerAgentName, checkerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", RiskCheckerAgentName, err)
	}

	redrafter, err := agent.NewLLMAgent(ctx, RedraftAgentName, append(opts.llmOptions(),
		agent.WithDescription("Applies the review fixes to the briefing."),
		agent.WithInstructionProvider(func(rctx *types.ReadOnlyContext) string {
			state := rctx.State()
			return llmflow.InjectState(reviseInstruction(currentDraftKey(state)), state)
		}),
		agent.WithInputKeys(KeyBriefingDraft, KeyBriefingRevised, KeyRiskReport),
		agent.WithOutputKey(KeyBriefingRevised),
	)...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", RedraftAgentName, err)
	}

	return agent.NewLoopAgent(RiskLoopAgentName,
		checker,
		NewParserAgent("risk_report_parser", KeyRiskReportRaw, KeyRiskReport, ParseRiskReport,
			WithEscalateWhenSafe(opts.StopWhenSafe)),
		redrafter,
	).WithMaxIterations(opts.MaxRiskIterations), nil
}

// pipelineParameters declares the arguments of the pipeline tool.
var pipelineParameters = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"city":    {Type: genai.TypeString, Description: "City the briefing is for."},
		"state":   {Type: genai.TypeString, Description: "State or region, if given."},
		"country": {Type: genai.TypeString, Description: "Country, United States if unspecified."},
		"date":    {Type: genai.TypeString, Description: "Target date, today if unspecified."},
	},
	Required: []string{"city"},
}

// NewRootAgent builds the conversational entry point, which runs the workflow
// through the run_arovi_pipeline tool.
//
// The tool merges the workflow state back into the root session, so the root
// agent declares every workflow output key plus the request keys.
func NewRootAgent(ctx context.Context, opts Options) (types.Agent, error) {
	opts = opts.withDefaults()

	workflow, err := NewWorkflow(ctx, opts)
	if err != nil {
		return nil, err
	}

	pipeline := tools.NewAgentTool(PipelineToolName,
		"Runs the Arovi workflow and returns the public-health briefing metrics.",
		workflow,
		tools.WithAgentParameters(pipelineParameters, requestKeyPrefix),
		tools.WithSkipSummarization(true),
	)

	root, err := agent.NewLLMAgent(ctx, RootAgentName, append(opts.llmOptions(),
		agent.WithDescription("Arovi, a calm public-health daily briefing assistant."),
		agent.WithInstruction(rootInstruction),
		agent.WithTools(pipeline),
		agent.WithOutputKeys(append(types.CollectOutputKeys(workflow), RequestKeys...)...),
	)...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", RootAgentName, err)
	}

	return root, nil
}
