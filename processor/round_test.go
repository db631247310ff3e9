package processor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *recordingGenerator, *diagRecorder) {
	t.Helper()

	gen := &recordingGenerator{}
	diag := &diagRecorder{}
	c, err := NewCoordinator(Config{Package: "hotel", Markers: testMarkers}, gen, diag)
	require.NoError(t, err)
	return c, gen, diag
}

//
// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

// TestNewCoordinator_Config verifies option validation.
func TestNewCoordinator_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		gen    Generator
		option string
	}{
		{name: "empty_package", cfg: Config{Markers: testMarkers}, gen: &recordingGenerator{}, option: "package"},
		{name: "blank_package", cfg: Config{Package: "  ", Markers: testMarkers}, gen: &recordingGenerator{}, option: "package"},
		{name: "invalid_package", cfg: Config{Package: "my-pkg", Markers: testMarkers}, gen: &recordingGenerator{}, option: "package"},
		{name: "missing_service_marker", cfg: Config{Package: "p", Markers: Markers{ModuleBase: testModuleBase}}, gen: &recordingGenerator{}, option: "service-marker"},
		{name: "missing_module_base", cfg: Config{Package: "p", Markers: Markers{Service: testService}}, gen: &recordingGenerator{}, option: "module-base"},
		{name: "nil_generator", cfg: Config{Package: "p", Markers: testMarkers}, option: "generator"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewCoordinator(tt.cfg, tt.gen, nil)
			require.Nil(t, c)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}

// TestNewCoordinator_NilDiagnostics verifies a nil sink is accepted.
func TestNewCoordinator_NilDiagnostics(t *testing.T) {
	t.Parallel()

	c, err := NewCoordinator(Config{Package: "hotel", Markers: testMarkers}, &recordingGenerator{}, nil)
	require.NoError(t, err)

	act, err := c.Advance(context.Background(), []Declaration{target("/hotel/detail", "Detail")}, false)
	require.NoError(t, err)
	assert.Equal(t, ActionGenerated, act)
}

//
// -----------------------------------------------------------------------------
// Passes
// -----------------------------------------------------------------------------

// TestAdvance_SinglePassScenario verifies one pass carrying every kind.
func TestAdvance_SinglePassScenario(t *testing.T) {
	t.Parallel()

	c, gen, diag := newTestCoordinator(t)
	ctx := context.Background()

	act, err := c.Advance(ctx, []Declaration{
		target("/hotel/detail", "HotelDetail"),
		target("/hotel/list", "HotelList"),
		serviceImpl("PayServiceImpl", "PayService"),
		module("HotelModule"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, ActionGenerated, act)
	assert.Equal(t, StateAccumulating, c.Current())

	act, err = c.Advance(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, act)
	assert.Equal(t, StateDone, c.Current())

	require.Equal(t, 1, gen.calls)
	snap := gen.last()
	assert.Equal(t, "hotel", snap.group)
	assert.Equal(t, []RoutingEntry{
		{Group: "hotel", Subpath: "detail", Target: tn("HotelDetail")},
		{Group: "hotel", Subpath: "list", Target: tn("HotelList")},
	}, snap.targets)
	assert.Equal(t, []ServiceEntry{{Service: tn("PayService"), Impl: tn("PayServiceImpl")}}, snap.services)
	require.NotNil(t, snap.module)
	assert.Equal(t, tn("HotelModule"), snap.module.Type)

	assert.Empty(t, diag.messages(SeverityWarning))
	assert.Empty(t, diag.messages(SeverityError))
}

// TestAdvance_GroupMismatchFails verifies a conflicting group aborts the run
// and that no further passes are accepted.
func TestAdvance_GroupMismatchFails(t *testing.T) {
	t.Parallel()

	c, gen, diag := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, []Declaration{
		target("/hotel/detail", "HotelDetail"),
		target("/ticket/list", "TicketList"),
	}, false)
	require.ErrorIs(t, err, ErrGroupMismatch)
	assert.Equal(t, StateFailed, c.Current())
	assert.Zero(t, gen.calls)
	require.Len(t, diag.messages(SeverityError), 1)

	// the failing pass is not committed
	assert.Zero(t, c.State().Targets.Len())

	_, err = c.Advance(ctx, nil, true)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Pass)
}

// TestAdvance_MultiPassAccumulates verifies later passes regenerate from a
// superset of earlier ones.
func TestAdvance_MultiPassAccumulates(t *testing.T) {
	t.Parallel()

	c, gen, _ := newTestCoordinator(t)
	ctx := context.Background()

	act, err := c.Advance(ctx, []Declaration{target("/hotel/detail", "HotelDetail")}, false)
	require.NoError(t, err)
	assert.Equal(t, ActionGenerated, act)

	act, err = c.Advance(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, ActionIdle, act)

	act, err = c.Advance(ctx, []Declaration{
		target("/hotel/list", "HotelList"),
		serviceImpl("PayServiceImpl", "PayService"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, ActionGenerated, act)

	act, err = c.Advance(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, act)

	require.Equal(t, 2, gen.calls)
	first, second := gen.snaps[0], gen.snaps[1]
	require.Len(t, first.targets, 1)
	require.Len(t, second.targets, 2)
	assert.Equal(t, first.targets, second.targets[:1], "earlier entries keep their order")
	assert.Len(t, second.services, 1)
	assert.Nil(t, second.module)
	assert.Equal(t, 4, c.Pass())
}

// TestAdvance_DuplicateAcrossPasses verifies cross-pass uniqueness.
func TestAdvance_DuplicateAcrossPasses(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, []Declaration{module("A")}, false)
	require.NoError(t, err)

	_, err = c.Advance(ctx, []Declaration{module("B")}, false)
	require.ErrorIs(t, err, ErrMultipleModules)

	got, ok := c.State().Module.Get()
	require.True(t, ok)
	assert.Equal(t, tn("A"), got.Type)
}

// TestAdvance_FinalWithDeclarations verifies the host cannot smuggle
// declarations into the final pass.
func TestAdvance_FinalWithDeclarations(t *testing.T) {
	t.Parallel()

	c, gen, _ := newTestCoordinator(t)

	_, err := c.Advance(context.Background(), []Declaration{target("/hotel/detail", "D")}, true)
	require.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, StateFailed, c.Current())
	assert.Zero(t, gen.calls)
}

// TestAdvance_AfterDone verifies the coordinator refuses passes once finished.
func TestAdvance_AfterDone(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, nil, true)
	require.NoError(t, err)

	_, err = c.Advance(ctx, nil, false)
	require.ErrorIs(t, err, ErrProtocol)
	assert.Contains(t, err.Error(), "after the final pass")
	assert.Equal(t, StateDone, c.Current())
}

// TestAdvance_EmptyRun verifies an empty scan still generates once and warns
// for every kind.
func TestAdvance_EmptyRun(t *testing.T) {
	t.Parallel()

	c, gen, diag := newTestCoordinator(t)

	act, err := c.Advance(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, act)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, gen.last().group)

	assert.Equal(t, []string{
		"no target declarations found",
		"no service declarations found",
		"no module declaration found",
	}, diag.messages(SeverityWarning))
}

// TestAdvance_GeneratorError verifies generator failures surface as *EmitError.
func TestAdvance_GeneratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	gen := &recordingGenerator{err: boom}
	c, err := NewCoordinator(Config{Package: "hotel", Markers: testMarkers}, gen, nil)
	require.NoError(t, err)

	_, err = c.Advance(context.Background(), []Declaration{target("/hotel/detail", "D")}, false)
	var ee *EmitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "hotel", ee.Artifact)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, c.Current())
}

// TestAdvance_GeneratorEmitErrorKept verifies an *EmitError from the generator
// is returned as is.
func TestAdvance_GeneratorEmitErrorKept(t *testing.T) {
	t.Parallel()

	want := &EmitError{Artifact: "modkit_routes.gen.go", Err: errors.New("x")}
	gen := GeneratorFunc(func(context.Context, *ScanState) error { return want })
	c, err := NewCoordinator(Config{Package: "hotel", Markers: testMarkers}, gen, nil)
	require.NoError(t, err)

	_, err = c.Advance(context.Background(), []Declaration{target("/hotel/detail", "D")}, false)
	var ee *EmitError
	require.ErrorAs(t, err, &ee)
	assert.Same(t, want, ee)
}

// TestAdvance_UnknownKind verifies a malformed declaration is a protocol error.
func TestAdvance_UnknownKind(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCoordinator(t)

	_, err := c.Advance(context.Background(), []Declaration{{Kind: Kind(42), Type: tn("X")}}, false)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pass)
}

// TestAdvance_Notes verifies pass notes and transitions reach the sink.
func TestAdvance_Notes(t *testing.T) {
	t.Parallel()

	var notes []string
	diag := DiagnosticsFunc(func(sev Severity, msg string) {
		if sev == SeverityNote {
			notes = append(notes, msg)
		}
	})
	c, err := NewCoordinator(Config{Package: "hotel", Markers: testMarkers}, &recordingGenerator{}, diag)
	require.NoError(t, err)

	_, err = c.Advance(context.Background(), []Declaration{target("/hotel/detail", "D")}, false)
	require.NoError(t, err)

	joined := strings.Join(notes, "\n")
	assert.Contains(t, joined, "processing pass 1, new declarations: 1, final: false")
	assert.Contains(t, joined, "handle target declaration example.com/app.D")
	assert.Contains(t, joined, "coordinator: idle -> accumulating")
	assert.Contains(t, joined, "processing pass 1, cost time:")
}

//
// -----------------------------------------------------------------------------
// String helpers
// -----------------------------------------------------------------------------

// TestStringers verifies log names of enums.
func TestStringers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "generated", ActionGenerated.String())
	assert.Equal(t, "action(9)", Action(9).String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "severity(7)", Severity(7).String())
	assert.Equal(t, "module", KindModule.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
