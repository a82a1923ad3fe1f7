package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
)

// Parameter names the dispatcher reads for targeted operations.
const (
	ParamEvent = "_event"
	ParamValue = "value"
	ParamTab   = "tab"
)

// Scope tells the caller what to send back for a dispatched request.
type Scope int

const (
	// ScopePage is the full document shell. Only Load produces it.
	ScopePage Scope = iota
	// ScopeFragment is the inner content, spliced by the client.
	ScopeFragment
	// ScopeTerminal is the confirmation shown after a headless submit.
	ScopeTerminal
	// ScopeText is a bare string (the theme class).
	ScopeText
	// ScopeNone is an empty response.
	ScopeNone
)

// Result is the outcome of one dispatch.
type Result struct {
	Scope Scope

	// Tree is the rebuilt tree to render. After a failed callback it is the
	// pre-mutation tree.
	Tree *domain.Tree

	// State is the State to commit, or nil when nothing may be committed.
	State domain.State

	// Diff lists the keys the request changed. Nil when nothing changed.
	Diff *domain.StateDiff

	// Err carries a *domain.CallbackError; the caller renders a diagnostic
	// in place of the fragment.
	Err error

	// Submitted is the filtered State handed to the agent on headless submit.
	Submitted domain.State

	// Text is the body for ScopeText.
	Text string
}

// Dispatcher drives one request through resolve, apply and re-resolve.
// It holds no per-session data; the caller owns loading and committing State.
type Dispatcher struct {
	engine  *Engine
	agent   *Agent
	themes  []string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAgent routes headless submissions to agent.
func WithAgent(agent *Agent) DispatcherOption {
	return func(d *Dispatcher) {
		d.agent = agent
	}
}

// WithThemes restricts theme switches to the given names.
// With no themes registered any non-empty name is accepted.
func WithThemes(themes ...string) DispatcherOption {
	return func(d *Dispatcher) {
		d.themes = append(d.themes, themes...)
	}
}

// WithLogger configures the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *observability.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher over engine.
func NewDispatcher(engine *Engine, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Engine returns the rebuild engine.
func (d *Dispatcher) Engine() *Engine {
	return d.engine
}

// Dispatch handles req against state. state itself is never modified: all
// work happens on a copy that is returned in Result.State only when the whole
// request, callbacks included, succeeded.
//
// A returned error is fatal for the request (structural error, invalid
// input). Callback failures are not errors: they come back in Result.Err
// with a nil Result.State.
func (d *Dispatcher) Dispatch(ctx context.Context, state domain.State, req domain.Request) (res *Result, err error) {
	start := time.Now()
	defer func() {
		d.metrics.ObserveDispatch(string(req.Kind), outcome(res, err), time.Since(start))
	}()

	if state == nil {
		state = domain.NewState()
	}
	work := state.Clone()

	pre, err := d.engine.Resolve(work)
	if err != nil {
		return nil, err
	}

	if req.Kind == domain.RequestLoad {
		return &Result{Scope: ScopePage, Tree: pre, State: work, Diff: domain.Diff(state, work)}, nil
	}

	err = d.Apply(ctx, pre, work, req)
	var cbErr *domain.CallbackError
	switch {
	case err == nil:
	case errors.As(err, &cbErr):
		d.metrics.CallbackFailed(cbErr.Op)
		d.logger.ErrorContext(ctx, "callback failed",
			"op", cbErr.Op,
			"target", cbErr.Target,
			"err", cbErr.Err,
		)
		return &Result{Scope: ScopeFragment, Tree: pre, Err: cbErr}, nil
	case errors.Is(err, domain.ErrUnknownTarget):
		d.logger.DebugContext(ctx, "unknown target", "kind", req.Kind, "target", req.Target)
	default:
		return nil, err
	}

	res = &Result{Scope: ScopeFragment, State: work}

	switch req.Kind {
	case domain.RequestToastDismiss:
		res.Scope = ScopeNone
	case domain.RequestThemeSwitch:
		res.Scope = ScopeText
		res.Text = domain.ThemeClass(work.String(domain.KeyTheme))
	default:
		post, err := d.engine.Resolve(work)
		if err != nil {
			return nil, err
		}
		res.Tree = post
		if req.Kind == domain.RequestSubmit {
			res.Scope = ScopeTerminal
			res.Submitted = work.Filter(post.InputKeys())
			if d.agent != nil && !d.agent.Deliver(res.Submitted) {
				d.logger.DebugContext(ctx, "agent already received a submission")
			}
		}
	}

	res.Diff = domain.Diff(state, work)
	if res.Diff != nil {
		d.logger.DebugContext(ctx, "state changed", "kind", req.Kind, "target", req.Target, "keys", res.Diff.Keys())
	}
	return res, nil
}

// Apply performs the mutation step of req on work, using the pre-mutation
// tree for every lookup. It returns domain.ErrUnknownTarget (after any merge
// already applied) when the target cannot be found, and a
// *domain.CallbackError when user code fails.
func (d *Dispatcher) Apply(ctx context.Context, pre *domain.Tree, work domain.State, req domain.Request) error {
	switch req.Kind {
	case domain.RequestUpdate, domain.RequestSubmit:
		_, err := d.mergeTop(pre, work, req)
		return err

	case domain.RequestAction:
		if _, err := d.mergeTop(pre, work, req); err != nil {
			return err
		}
		btn := pre.FindButton(req.Target)
		if btn == nil {
			return fmt.Errorf("%w: button %q", domain.ErrUnknownTarget, req.Target)
		}
		if btn.Action == nil {
			return nil
		}
		return invoke("action", req.Target, func() error {
			return btn.Action(ctx, work)
		})

	case domain.RequestEvent:
		return d.applyEvent(ctx, pre, work, req)

	case domain.RequestFormSubmit:
		return d.applyForm(ctx, pre, work, req)

	case domain.RequestGroupToggle:
		return d.applyToggle(ctx, pre, work, req)

	case domain.RequestTabSwitch:
		tabs := pre.FindTabs(req.Target)
		tab := req.Params.Get(ParamTab)
		if tabs == nil || !slices.Contains(tabs.Tabs(), tab) {
			return fmt.Errorf("%w: tab %q of %q", domain.ErrUnknownTarget, tab, req.Target)
		}
		scope := map[string]any(work)
		if tabs.Form != "" {
			scope = work.Nested(tabs.Form)
		}
		scope[tabs.Key] = tab
		return nil

	case domain.RequestThemeSwitch:
		if req.Target == "" || (len(d.themes) > 0 && !slices.Contains(d.themes, req.Target)) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownTheme, req.Target)
		}
		work[domain.KeyTheme] = req.Target
		return nil

	case domain.RequestToastDismiss:
		if !domain.DismissToast(work, req.Target) {
			return fmt.Errorf("%w: toast %q", domain.ErrUnknownTarget, req.Target)
		}
		return nil
	}
	return fmt.Errorf("unsupported request kind %q", req.Kind)
}

// mergeTop merges top-level params and clears absent checkboxes.
func (d *Dispatcher) mergeTop(pre *domain.Tree, work domain.State, req domain.Request) (map[string]bool, error) {
	present, err := Merge(work, req.Params)
	if err != nil {
		return nil, err
	}
	ClearAbsent(pre, work, present, "")
	return present, nil
}

// applyEvent merges params and fires the change and/or blur callbacks of the
// node bound to the target key. Only the target key gets the absent-checkbox
// treatment, since events carry a single input.
func (d *Dispatcher) applyEvent(ctx context.Context, pre *domain.Tree, work domain.State, req domain.Request) error {
	present, err := Merge(work, req.Params)
	if err != nil {
		return err
	}
	node := pre.FindBound(req.Target)
	if node == nil {
		return fmt.Errorf("%w: key %q", domain.ErrUnknownTarget, req.Target)
	}
	if !present[node.Key] {
		switch node.Kind {
		case domain.KindCheckbox:
			work[node.Key] = false
		case domain.KindCheckboxGroup:
			work[node.Key] = []string{}
		}
	}

	event := req.Params.Get(ParamEvent)
	value := work[node.Key]
	if node.OnChange != nil && (event == "" || event == domain.EventChange) {
		if err := invoke("event", req.Target, func() error {
			return node.OnChange(ctx, work, value)
		}); err != nil {
			return err
		}
	}
	if node.OnBlur != nil && (event == "" || event == domain.EventBlur) {
		return invoke("event", req.Target, func() error {
			return node.OnBlur(ctx, work, value)
		})
	}
	return nil
}

// applyForm replaces state[form] with the submitted fields, rebuilds, then
// runs the form's submit callback with the new nested map.
func (d *Dispatcher) applyForm(ctx context.Context, pre *domain.Tree, work domain.State, req domain.Request) error {
	name := req.Target
	if pre.FindForm(name) == nil {
		return fmt.Errorf("%w: form %q", domain.ErrUnknownTarget, name)
	}

	prior, _ := domain.AsMap(work[name])
	fresh := make(map[string]any)
	present, err := MergeInto(fresh, prior, FormParams(name, req.Params))
	if err != nil {
		return err
	}
	ClearAbsent(pre, fresh, present, name)
	work[name] = fresh

	mid, err := d.engine.Resolve(work)
	if err != nil {
		return err
	}
	form := mid.FindForm(name)
	if form == nil || form.OnSubmit == nil {
		return nil
	}
	values := work.Nested(name)
	return invoke("form", name, func() error {
		return form.OnSubmit(ctx, work, values)
	})
}

// applyToggle flips one value in a checkbox group's selection and fires the
// group's change callback.
func (d *Dispatcher) applyToggle(ctx context.Context, pre *domain.Tree, work domain.State, req domain.Request) error {
	node := pre.FindBound(req.Target)
	if node == nil || node.Kind != domain.KindCheckboxGroup {
		return fmt.Errorf("%w: group %q", domain.ErrUnknownTarget, req.Target)
	}
	value, err := SanitizeInput(req.Params.Get(ParamValue))
	if err != nil {
		return fmt.Errorf("parameter %q: %w", ParamValue, err)
	}
	if !slices.Contains(node.Props.Items, value) {
		return fmt.Errorf("%w: group %q has no item %q", domain.ErrUnknownTarget, req.Target, value)
	}

	selected := domain.Strings(work[node.Key])
	if i := slices.Index(selected, value); i >= 0 {
		selected = slices.Delete(selected, i, i+1)
	} else {
		selected = append(selected, value)
	}
	work[node.Key] = selected

	if node.OnChange == nil {
		return nil
	}
	return invoke("toggle", req.Target, func() error {
		return node.OnChange(ctx, work, selected)
	})
}

// invoke runs user code, turning returned errors and panics into
// *domain.CallbackError.
func invoke(op, target string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.CallbackError{
				Op:     op,
				Target: target,
				Err:    fmt.Errorf("panic: %v", r),
				Stack:  debug.Stack(),
			}
		}
	}()
	if err := fn(); err != nil {
		return &domain.CallbackError{Op: op, Target: target, Err: err}
	}
	return nil
}

func outcome(res *Result, err error) string {
	var cbErr *domain.CallbackError
	switch {
	case errors.Is(err, domain.ErrStructure):
		return observability.OutcomeStructure
	case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8), errors.Is(err, domain.ErrUnknownTheme):
		return observability.OutcomeInvalid
	case errors.As(err, &cbErr):
		return observability.OutcomeCallback
	case err != nil:
		return observability.OutcomeError
	case res.Err != nil:
		return observability.OutcomeCallback
	case res.Diff == nil:
		return observability.OutcomeNoop
	}
	return observability.OutcomeOK
}
