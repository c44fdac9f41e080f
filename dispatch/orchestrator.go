package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/dispatchmesh/capability"
	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/demo"
	"github.com/hupe1980/dispatchmesh/logging"
	"github.com/hupe1980/dispatchmesh/memory"
	"github.com/hupe1980/dispatchmesh/oracle"
)

// DefaultMaxRetries bounds both transient oracle retries and capability
// dispatch rounds within one Respond call.
const DefaultMaxRetries = 3

// DefaultAssistantName is the persona name used in the system instructions
// when the caller does not override it.
const DefaultAssistantName = "DispatchMesh"

// defaultExitPhrases end an active scripted replay when received verbatim
// (case-insensitive, whitespace-trimmed).
var defaultExitPhrases = []string{"exit demo", "stop demo", "end demo", "quit demo"}

// Options configure the Orchestrator.
type Options struct {
	// MaxRetries bounds oracle retry attempts and dispatch rounds.
	MaxRetries int
	// FallbackIdentity scopes requests that carry no identity token.
	FallbackIdentity string
	// AssistantName is the persona presented in the system instructions.
	AssistantName string
	// ExitPhrases end an active scripted replay.
	ExitPhrases []string
	// Backoff returns the pause before retry attempt n (n starts at 1).
	Backoff func(attempt int) time.Duration
	// Logger receives orchestration events.
	Logger logging.Logger
}

// Orchestrator drives one synchronous dispatch call: identity resolution,
// capability loading, scripted replay handling and the bounded
// dispatch-and-retry loop against the oracle. It holds no per-request state;
// a single Orchestrator serves concurrent requests.
type Orchestrator struct {
	oracle   oracle.Oracle
	loader   *capability.Loader
	resolver *memory.Resolver
	demos    *demo.Engine
	store    core.BlobStore
	opts     Options
}

// NewOrchestrator wires the orchestrator over its collaborators.
func NewOrchestrator(o oracle.Oracle, loader *capability.Loader, resolver *memory.Resolver, demos *demo.Engine, store core.BlobStore, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxRetries:       DefaultMaxRetries,
		FallbackIdentity: core.FallbackIdentity,
		AssistantName:    DefaultAssistantName,
		ExitPhrases:      defaultExitPhrases,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 500 * time.Millisecond
		},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Orchestrator{oracle: o, loader: loader, resolver: resolver, demos: demos, store: store, opts: opts}
}

// Respond executes one dispatch call. The returned error is non-nil only when
// the context is cancelled; every other failure mode produces a well-formed
// friendly Response so transports never surface raw errors to the user.
func (o *Orchestrator) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	invocationID := core.NewID()

	identity, announced := resolveIdentity(req, o.opts.FallbackIdentity)

	logger := o.opts.Logger
	if dl, ok := logger.(*logging.DispatchLogger); ok {
		logger = dl.WithComponent("orchestrator").WithInvocation(identity, invocationID)
	}
	logger.Debug("dispatch.start", "identity", identity, "invocation_id", invocationID)

	if announced {
		return o.respond(identity, nil,
			"Got it, I'll use your personal context from now on.",
			"Got it, I'll use your personal context from now on."), nil
	}

	registry, report := o.loader.Load(ctx, identity)
	if len(report.Failures) > 0 {
		logger.Warn("dispatch.load.partial", "failed", len(report.Failures))
	}

	userMessage := strings.TrimSpace(req.UserMessage)
	state := demo.DetermineState(req.ConversationHistory)

	if state.Active {
		return o.respondReplay(ctx, logger, registry, identity, invocationID, state, userMessage)
	}

	if o.isExitCommand(userMessage) {
		return o.respond(identity, nil,
			"There is no demo running right now.",
			"There is no demo running right now."), nil
	}

	if script := o.demos.MatchTrigger(ctx, userMessage); script != nil {
		logger.Info("dispatch.demo.triggered", "script", script.ID)
		return o.playStep(ctx, logger, registry, identity, invocationID, script, 0, demo.Annotation{
			Kind:       demo.KindActivated,
			ScriptID:   script.ID,
			TotalSteps: len(script.Steps),
		})
	}

	return o.respondLive(ctx, logger, registry, identity, invocationID, userMessage, req.ConversationHistory)
}

// respondReplay handles one turn while a scripted replay is active. Replay
// turns never reach the oracle: the engine either advances the script, ends
// it, or nudges the user back toward the expected flow.
func (o *Orchestrator) respondReplay(ctx context.Context, logger logging.Logger, registry *capability.Registry, identity, invocationID string, state demo.State, userMessage string) (*core.Response, error) {
	if o.isExitCommand(userMessage) {
		logger.Info("dispatch.demo.exited", "script", state.ScriptID)
		return o.respond(identity,
			[]core.Message{demo.Annotation{Kind: demo.KindExited, ScriptID: state.ScriptID}.Message()},
			"Demo ended. We're back to the normal conversation.",
			"Demo ended."), nil
	}

	script, err := o.demos.Script(ctx, state.ScriptID)
	if err != nil {
		logger.Warn("dispatch.demo.missing", "script", state.ScriptID, "error", err.Error())
		return o.respond(identity,
			[]core.Message{demo.Annotation{Kind: demo.KindExited, ScriptID: state.ScriptID}.Message()},
			"That demo script is no longer available, so I've ended the demo.",
			"The demo script is no longer available."), nil
	}

	next, ok, exhausted := demo.ContinueFrom(script, state, userMessage)
	if exhausted {
		logger.Info("dispatch.demo.completed", "script", script.ID)
		return o.respond(identity,
			[]core.Message{demo.Annotation{Kind: demo.KindCompleted, ScriptID: script.ID, TotalSteps: len(script.Steps)}.Message()},
			fmt.Sprintf("That's the end of the %s demo. Anything else I can help with?", script.ID),
			"That's the end of the demo."), nil
	}
	if !ok {
		hint := script.Steps[state.StepIndex].Description
		if hint == "" {
			hint = script.Steps[state.StepIndex].ExpectedUserMessage
		}
		return o.respond(identity, nil,
			fmt.Sprintf("We're in the middle of the %s demo (step %d of %d). Try: %s", script.ID, state.StepIndex+1, state.TotalSteps, hint),
			fmt.Sprintf("We're on step %d of the demo.", state.StepIndex+1)), nil
	}

	return o.playStep(ctx, logger, registry, identity, invocationID, script, next, demo.Annotation{
		Kind:       demo.KindStep,
		ScriptID:   script.ID,
		StepIndex:  next,
		TotalSteps: len(script.Steps),
	})
}

// playStep renders one script step through the playback capability so replay
// turns show up in the invocation trace like any other capability call. A
// registry without the playback capability falls back to direct rendering.
func (o *Orchestrator) playStep(ctx context.Context, logger logging.Logger, registry *capability.Registry, identity, invocationID string, script *demo.Script, step int, annotation demo.Annotation) (*core.Response, error) {
	args := map[string]string{"script_id": script.ID, "step": fmt.Sprintf("%d", step)}

	var rendered string
	if playback, ok := registry.Lookup(demo.PlaybackCapabilityName); ok {
		invCtx := capability.NewContext(ctx, identity, invocationID, o.store, logger)
		result, err := playback.Perform(invCtx, args)
		if err != nil {
			logger.Error("dispatch.demo.playback_failed", "script", script.ID, "step", step, "error", err.Error())
			return o.respond(identity,
				[]core.Message{demo.Annotation{Kind: demo.KindExited, ScriptID: script.ID}.Message()},
				"Something went wrong playing that demo step, so I've ended the demo.",
				"Something went wrong with the demo."), nil
		}
		rendered = result
	} else {
		rendered = script.RenderStep(step)
	}

	formatted, spoken := SplitDualFormat(rendered)
	resp := o.respond(identity, []core.Message{annotation.Message()}, formatted, spoken)
	resp.InvocationTrace = traceEntry(demo.PlaybackCapabilityName, args, rendered)
	return resp, nil
}

// respondLive runs the dispatch-and-retry loop: each round is one oracle call
// that either answers directly or requests at most one capability invocation.
// Capability results flow back as tool-role messages; results carrying an
// error or incomplete marker grant a follow-up round within the retry budget.
func (o *Orchestrator) respondLive(ctx context.Context, logger logging.Logger, registry *capability.Registry, identity, invocationID, userMessage string, history []core.Message) (*core.Response, error) {
	memCtx := o.resolver.Resolve(ctx, identity)

	oreq := oracle.Request{
		Instructions: buildInstructions(o.opts.AssistantName, memCtx),
		Messages:     append(promptHistory(history), core.NewUserMessage(userMessage)),
		Tools:        registry.ToolDefinitions(),
	}

	var trace []string

	for round := 0; round < o.opts.MaxRetries; round++ {
		oresp, err := o.complete(ctx, logger, oreq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("dispatch.oracle.failed", "round", round, "error", err.Error())
			return o.unavailable(identity, trace), nil
		}

		if oresp.ToolCall == nil {
			formatted, spoken := SplitDualFormat(oresp.Text)
			resp := o.respond(identity, nil, formatted, spoken)
			resp.InvocationTrace = strings.Join(trace, "\n")
			return resp, nil
		}

		call := oresp.ToolCall
		c, ok := registry.Lookup(call.Name)
		if !ok {
			logger.Warn("dispatch.capability.unknown", "capability", call.Name)
			resp := o.respond(identity, nil,
				fmt.Sprintf("I tried to use a capability called %q, but it isn't available right now.", call.Name),
				"That capability isn't available right now.")
			resp.InvocationTrace = strings.Join(trace, "\n")
			return resp, nil
		}

		args, err := parseArguments(call.Arguments)
		if err != nil {
			logger.Warn("dispatch.capability.bad_arguments", "capability", call.Name, "error", err.Error())
			return o.parameterFailure(identity, call.Name, trace), nil
		}
		fillDeclaredArgs(args, c.Parameters())

		invCtx := capability.NewContext(ctx, identity, invocationID, o.store, logger)
		start := time.Now()
		result, err := c.Perform(invCtx, args)
		if dl, ok := logger.(*logging.DispatchLogger); ok {
			dl.LogCapabilityCall(call.Name, time.Since(start), err == nil, err)
		}
		if err != nil {
			var capErr *capability.CapabilityError
			if errors.As(err, &capErr) && capErr.Code == "VALIDATION_ERROR" {
				return o.parameterFailure(identity, call.Name, trace), nil
			}
			trace = append(trace, traceEntry(call.Name, args, capability.ErrorMarker+" "+err.Error()))
			oreq.Messages = append(oreq.Messages,
				core.Message{Role: core.RoleTool, Content: capability.ErrorMarker + " " + call.Name + ": " + err.Error()})
			continue
		}

		trace = append(trace, traceEntry(call.Name, args, result))
		oreq.Messages = append(oreq.Messages, core.Message{Role: core.RoleTool, Content: result})

		if capability.IsIncomplete(result) {
			logger.Debug("dispatch.capability.incomplete", "capability", call.Name, "round", round)
			continue
		}

		// Final synthesis round: same conversation, no tools attached, so the
		// oracle must answer in text.
		oreq.Tools = nil
		oresp, err = o.complete(ctx, logger, oreq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("dispatch.synthesis.failed", "error", err.Error())
			return o.unavailable(identity, trace), nil
		}
		formatted, spoken := SplitDualFormat(oresp.Text)
		resp := o.respond(identity, nil, formatted, spoken)
		resp.InvocationTrace = strings.Join(trace, "\n")
		return resp, nil
	}

	logger.Warn("dispatch.rounds.exhausted", "max_retries", o.opts.MaxRetries)
	return o.unavailable(identity, trace), nil
}

// complete performs one oracle round, retrying transient unavailability with
// backoff inside the retry budget. Any other error returns immediately.
func (o *Orchestrator) complete(ctx context.Context, logger logging.Logger, req oracle.Request) (*oracle.Response, error) {
	info := o.oracle.Info()

	var lastErr error
	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, o.opts.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		resp, err := o.oracle.Complete(ctx, req)
		if dl, ok := logger.(*logging.DispatchLogger); ok {
			dl.LogOracleCall(info.Name, time.Since(start), err == nil, err)
		}
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, oracle.ErrUnavailable) {
			return nil, err
		}
		logger.Warn("dispatch.oracle.retry", "attempt", attempt, "error", err.Error())
	}
	return nil, lastErr
}

func (o *Orchestrator) respond(identity string, annotations []core.Message, formatted, spoken string) *core.Response {
	return &core.Response{
		FormattedText: formatted,
		SpokenSummary: spoken,
		Identity:      identity,
		Annotations:   annotations,
	}
}

func (o *Orchestrator) unavailable(identity string, trace []string) *core.Response {
	resp := o.respond(identity, nil,
		"I'm having trouble reaching my language service right now. Please try again in a moment.",
		"I'm having trouble right now, please try again in a moment.")
	resp.InvocationTrace = strings.Join(trace, "\n")
	return resp
}

func (o *Orchestrator) parameterFailure(identity, name string, trace []string) *core.Response {
	resp := o.respond(identity, nil,
		fmt.Sprintf("I couldn't work out the right parameters for %s. Could you rephrase your request with a bit more detail?", name),
		"I couldn't work out the right parameters, could you rephrase?")
	resp.InvocationTrace = strings.Join(trace, "\n")
	return resp
}

func (o *Orchestrator) isExitCommand(userMessage string) bool {
	msg := strings.ToLower(strings.TrimSpace(userMessage))
	for _, phrase := range o.opts.ExitPhrases {
		if msg == phrase {
			return true
		}
	}
	return false
}

// parseArguments decodes the oracle supplied JSON argument object into the
// flat string map capabilities consume. Null values become empty strings and
// non-string values keep their JSON encoding.
func parseArguments(raw string) (map[string]string, error) {
	args := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	for k, v := range decoded {
		switch t := v.(type) {
		case nil:
			args[k] = ""
		case string:
			args[k] = t
		default:
			b, _ := json.Marshal(t)
			args[k] = string(b)
		}
	}
	return args, nil
}

// fillDeclaredArgs substitutes the empty string for every declared property
// the oracle omitted, so capabilities never branch on key presence.
func fillDeclaredArgs(args map[string]string, schema map[string]any) {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}
	for name := range props {
		if _, present := args[name]; !present {
			args[name] = ""
		}
	}
}

// traceEntry renders one invocation trace line: capability name, arguments in
// a stable order, and the stringified result.
func traceEntry(name string, args map[string]string, result string) string {
	payload, _ := json.Marshal(args)
	return name + " " + string(payload) + " => " + result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
