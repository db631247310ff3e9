package processor

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"time"

	"github.com/looplab/fsm"
)

// Generator renders artifacts from the accumulated state.
//
// It is invoked after every pass that produced new declarations and must be a
// pure function of the state: regenerating from a superset replaces the
// previous output whole.
type Generator interface {
	Generate(ctx context.Context, state *ScanState) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, state *ScanState) error

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, state *ScanState) error { return f(ctx, state) }

// Config configures a Coordinator.
type Config struct {
	// Package is the Go package name of the generated artifacts. Required.
	Package string

	Markers Markers
}

// Validate reports the first invalid option as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Package) == "":
		return &ConfigError{Option: "package", Reason: "must not be empty"}
	case !token.IsIdentifier(c.Package):
		return &ConfigError{Option: "package", Reason: strconv.Quote(c.Package) + " is not a valid Go package name"}
	case c.Markers.Service.IsZero():
		return &ConfigError{Option: "service-marker", Reason: "must not be empty"}
	case c.Markers.ModuleBase.IsZero():
		return &ConfigError{Option: "module-base", Reason: "must not be empty"}
	}
	return nil
}

// Action tells the host what a pass did.
type Action int

const (
	// ActionIdle means the pass carried nothing new.
	ActionIdle Action = iota

	// ActionGenerated means new declarations were accepted and artifacts regenerated.
	ActionGenerated

	// ActionFinished means the final pass completed; the staged output is final.
	ActionFinished
)

// String returns a short name for logs.
func (a Action) String() string {
	switch a {
	case ActionIdle:
		return "idle"
	case ActionGenerated:
		return "generated"
	case ActionFinished:
		return "finished"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Coordinator states and events.
const (
	StateIdle         = "idle"
	StateAccumulating = "accumulating"
	StateDone         = "done"
	StateFailed       = "failed"

	eventAccumulate = "accumulate"
	eventFinish     = "finish"
	eventFail       = "fail"
)

// Coordinator drives one compilation across host passes.
//
// State machine: idle -> accumulating -> (repeat) -> done. Any fatal error
// moves it to failed. Neither done nor failed accepts further passes.
type Coordinator struct {
	cfg   Config
	gen   Generator
	diag  Diagnostics
	fsm   *fsm.FSM
	state *ScanState
	pass  int
}

// NewCoordinator validates cfg and returns a coordinator in the idle state.
// A nil diag discards diagnostics.
func NewCoordinator(cfg Config, gen Generator, diag Diagnostics) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, &ConfigError{Option: "generator", Reason: "must not be nil"}
	}
	if diag == nil {
		diag = nopDiagnostics{}
	}

	c := &Coordinator{
		cfg:   cfg,
		gen:   gen,
		diag:  diag,
		state: NewScanState(cfg.Markers),
	}

	open := []string{StateIdle, StateAccumulating}
	c.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventAccumulate, Src: open, Dst: StateAccumulating},
			{Name: eventFinish, Src: open, Dst: StateDone},
			{Name: eventFail, Src: open, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.diag.Report(SeverityNote, fmt.Sprintf("coordinator: %s -> %s", e.Src, e.Dst))
			},
		},
	)
	return c, nil
}

// State returns the accumulated model. It must not be mutated by callers.
func (c *Coordinator) State() *ScanState { return c.state }

// Current returns the state machine state (StateIdle, StateAccumulating, ...).
func (c *Coordinator) Current() string { return c.fsm.Current() }

// Pass returns the number of Advance calls so far.
func (c *Coordinator) Pass() int { return c.pass }

// Advance processes one host pass.
//
//   - no declarations and not final: nothing to do, ActionIdle
//   - final with declarations: *ProtocolError
//   - final without declarations: the run is complete, ActionFinished
//   - otherwise the declarations are validated in order, committed as a whole
//     and the generator is invoked, ActionGenerated
//
// Every error is fatal for the compilation.
func (c *Coordinator) Advance(ctx context.Context, decls []Declaration, final bool) (Action, error) {
	c.pass++
	start := time.Now()
	c.diag.Report(SeverityNote, fmt.Sprintf("processing pass %d, new declarations: %d, final: %t", c.pass, len(decls), final))

	switch c.fsm.Current() {
	case StateDone:
		return ActionIdle, c.protocol("pass presented after the final pass")
	case StateFailed:
		return ActionIdle, c.protocol("pass presented after a fatal error")
	}

	if final && len(decls) > 0 {
		err := c.protocol(fmt.Sprintf("%d declarations presented after processing was declared over", len(decls)))
		c.fail(ctx, err)
		return ActionIdle, err
	}

	if final {
		c.warnEmpty()
		if c.fsm.Is(StateIdle) {
			// The activator is always emitted, even for a scan that found nothing.
			if err := c.generate(ctx); err != nil {
				return ActionIdle, err
			}
		}
		if err := c.transition(ctx, eventFinish); err != nil {
			return ActionIdle, err
		}
		return ActionFinished, nil
	}

	if len(decls) == 0 {
		c.diag.Report(SeverityNote, "nothing to process")
		return ActionIdle, nil
	}

	next := c.state.clone()
	for _, d := range decls {
		c.diag.Report(SeverityNote, fmt.Sprintf("handle %s declaration %s", d.Kind, d.Type))
		if err := next.apply(d); err != nil {
			var pe *ProtocolError
			if errors.As(err, &pe) {
				pe.Pass = c.pass
			}
			c.fail(ctx, err)
			return ActionIdle, err
		}
	}
	c.state = next

	if err := c.transition(ctx, eventAccumulate); err != nil {
		return ActionIdle, err
	}

	if err := c.generate(ctx); err != nil {
		return ActionIdle, err
	}

	c.diag.Report(SeverityNote, fmt.Sprintf("processing pass %d, cost time: %s", c.pass, time.Since(start).Round(time.Microsecond)))
	return ActionGenerated, nil
}

func (c *Coordinator) generate(ctx context.Context) error {
	if err := c.gen.Generate(ctx, c.state); err != nil {
		var ee *EmitError
		if !errors.As(err, &ee) {
			err = &EmitError{Artifact: c.cfg.Package, Err: err}
		}
		c.fail(ctx, err)
		return err
	}
	return nil
}

// transition fires event, treating a self-transition as success.
func (c *Coordinator) transition(ctx context.Context, event string) error {
	err := c.fsm.Event(ctx, event)
	if err == nil {
		return nil
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return nil
	}
	return c.protocol(err.Error())
}

func (c *Coordinator) fail(ctx context.Context, cause error) {
	c.diag.Report(SeverityError, cause.Error())
	_ = c.fsm.Event(ctx, eventFail)
}

func (c *Coordinator) protocol(reason string) *ProtocolError {
	return &ProtocolError{Pass: c.pass, Reason: reason}
}

// warnEmpty reports kinds that never appeared. Missing declarations are not
// an error: the corresponding artifact or registration is simply omitted.
func (c *Coordinator) warnEmpty() {
	if c.state.Targets.Len() == 0 {
		c.diag.Report(SeverityWarning, "no "+KindRoutable.String()+" declarations found")
	}
	if c.state.Services.Len() == 0 {
		c.diag.Report(SeverityWarning, "no "+KindServiceImpl.String()+" declarations found")
	}
	if _, ok := c.state.Module.Get(); !ok {
		c.diag.Report(SeverityWarning, "no "+KindModule.String()+" declaration found")
	}
}
