package kit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/modkit/route"
)

type payService interface {
	Service
	Pay(amount int) int
}

type payImpl struct{ fee int }

func (p *payImpl) Pay(amount int) int { return amount + p.fee }

type otherImpl struct{}

type hotelModule struct {
	BaseModule
	started, stopped *[]string
	name             string
	tasks            []BootTask
}

func (m *hotelModule) Start(context.Context) error {
	*m.started = append(*m.started, m.name)
	return nil
}

func (m *hotelModule) Stop(context.Context) error {
	*m.stopped = append(*m.stopped, m.name)
	return nil
}

func (m *hotelModule) BootTasks() []BootTask { return m.tasks }

type detail struct{}

type routes struct{ group string }

func (r routes) Group() string { return r.group }

func (r routes) Resolve(subpath string) (Target, bool) {
	switch subpath {
	case "detail":
		return Target{Path: "/" + r.group + "/detail", Type: "kit.detail", New: func() any { return new(detail) }}, true
	case "panic":
		panic("broken provider")
	}
	return Target{}, false
}

//
// -----------------------------------------------------------------------------
// ServiceKey / Lookup
// -----------------------------------------------------------------------------

// TestServiceKey verifies keys are fully qualified interface names.
func TestServiceKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "github.com/sghaida/modkit/kit.payService", ServiceKey[payService]())
	assert.Equal(t, "context.Context", ServiceKey[context.Context]())
	assert.Equal(t, "error", ServiceKey[error]())
}

// TestLookup verifies typed lookups and their error types.
func TestLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, err := Lookup[payService](r)
	var missing MissingServiceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ServiceKey[payService](), missing.Key)

	r.RegisterService(ServiceKey[payService](), &payImpl{fee: 2})
	svc, err := Lookup[payService](r)
	require.NoError(t, err)
	assert.Equal(t, 12, svc.Pay(10))
	assert.NotPanics(t, func() { MustLookup[payService](r) })

	r2 := NewRegistry()
	r2.RegisterService(ServiceKey[payService](), otherImpl{})
	_, err = Lookup[payService](r2)
	var wrong WrongTypeServiceError
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, "kit.otherImpl", wrong.GotType)
	assert.Panics(t, func() { MustLookup[payService](r2) })
}

//
// -----------------------------------------------------------------------------
// Registration conflicts
// -----------------------------------------------------------------------------

// TestRegistry_Conflicts verifies conflicts are recorded, not panicked.
func TestRegistry_Conflicts(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	key := ServiceKey[payService]()

	err := r.Install(
		func(h Host) {
			h.RegisterService(key, &payImpl{})
			h.RegisterTargetProvider(routes{group: "hotel"})
		},
		func(h Host) {
			h.RegisterService(key, &payImpl{fee: 1})
			h.RegisterService("nil", nil)
			h.RegisterTargetProvider(routes{group: "hotel"})
		},
		nil,
	)
	require.Error(t, err)

	assert.ErrorIs(t, err, DuplicateServiceError{Key: key})
	assert.ErrorIs(t, err, NilServiceError{Key: "nil"})
	assert.ErrorIs(t, err, DuplicateGroupError{Group: "hotel"})
	assert.ErrorIs(t, err, ErrNilActivator)

	// first registration wins
	svc, err := Lookup[payService](r)
	require.NoError(t, err)
	assert.Equal(t, 5, svc.Pay(5))
	assert.True(t, r.HasGroup("hotel"))
}

// TestRegistry_InstallClean verifies Install returns nil without conflicts.
func TestRegistry_InstallClean(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Install(func(h Host) {
		h.RegisterModule(nil)
		h.RegisterTargetProvider(nil)
	}))
	assert.Empty(t, r.Modules())
	assert.NoError(t, r.Err())
}

// TestDuplicateServiceError_Message verifies error text.
func TestDuplicateServiceError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `kit: duplicate service "a.B"`, DuplicateServiceError{Key: "a.B"}.Error())
	assert.Equal(t, `kit: service "a.B" missing`, MissingServiceError{Key: "a.B"}.Error())
	assert.Equal(t, `kit: no target for "/x/y"`, TargetNotFoundError{Path: "/x/y"}.Error())
}

//
// -----------------------------------------------------------------------------
// Resolve
// -----------------------------------------------------------------------------

// TestRegistry_Resolve verifies path resolution across providers.
func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterTargetProvider(routes{group: "hotel"})
	r.RegisterTargetProvider(routes{group: "ticket"})

	tgt, err := r.Resolve("/ticket/detail")
	require.NoError(t, err)
	assert.Equal(t, "/ticket/detail", tgt.Path)
	assert.IsType(t, &detail{}, tgt.New())

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "unknown_group", path: "/flight/detail", want: TargetNotFoundError{Path: "/flight/detail"}},
		{name: "unknown_subpath", path: "/hotel/list", want: TargetNotFoundError{Path: "/hotel/list"}},
		{name: "malformed", path: "/hotel", want: route.ErrMalformedPath},
		{name: "empty", path: "", want: route.ErrEmptyPath},
		{name: "panic", path: "/hotel/panic", want: ErrProviderPanic},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Zero(t, got.Path)
		})
	}
}

//
// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// TestRegistry_StartStop verifies start order and reverse stop order.
func TestRegistry_StartStop(t *testing.T) {
	t.Parallel()

	var started, stopped []string
	r := NewRegistry()
	r.RegisterModule(&hotelModule{name: "hotel", started: &started, stopped: &stopped})
	r.RegisterModule(&hotelModule{name: "ticket", started: &started, stopped: &stopped})

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Stop(ctx))

	assert.Equal(t, []string{"hotel", "ticket"}, started)
	assert.Equal(t, []string{"ticket", "hotel"}, stopped)
}

// TestBaseModule_Defaults verifies a bare module satisfies Module with no-ops.
func TestBaseModule_Defaults(t *testing.T) {
	t.Parallel()

	type bare struct{ BaseModule }
	var m Module = new(bare)

	ctx := context.Background()
	assert.NoError(t, m.Start(ctx))
	assert.NoError(t, m.Stop(ctx))
	assert.Nil(t, m.BootTasks())
}
