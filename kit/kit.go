package kit

import (
	"context"
	"reflect"
)

// Service is the marker a service interface embeds.
//
// Implementations never reference it directly: the generator accepts a
// //modkit:service type only when it implements exactly one interface that
// embeds Service.
//
// Implementing is structural, as in Go itself. Given
//
//	type Basic interface { kit.Service; Pay() }
//	type Full interface { kit.Service; Pay(); Refund() }
//
// an implementation of Full also implements Basic and is rejected as
// ambiguous when both are visible to the scan (declared in a scanned package
// or one it imports). Keep the method sets of service interfaces apart.
type Service interface{}

// Module is a module type registered by its activator.
//
// Every module embeds BaseModule, which supplies no-op defaults and the
// unexported method that keeps the interface closed to other types.
type Module interface {
	// Start runs after every activator has been installed.
	Start(ctx context.Context) error

	// Stop runs in reverse registration order on shutdown.
	Stop(ctx context.Context) error

	// BootTasks returns the tasks kit.Boot runs for this module.
	BootTasks() []BootTask

	baseModule()
}

// BaseModule is embedded by value in every //modkit:module type.
type BaseModule struct{}

// Start implements Module.
func (*BaseModule) Start(context.Context) error { return nil }

// Stop implements Module.
func (*BaseModule) Stop(context.Context) error { return nil }

// BootTasks implements Module.
func (*BaseModule) BootTasks() []BootTask { return nil }

func (*BaseModule) baseModule() {}

// Target is a routable type resolved from a "/group/subpath" path.
type Target struct {
	// Path is the canonical target path.
	Path string

	// Type is the fully qualified type name, e.g. "example.com/hotel.Detail".
	Type string

	// New returns a fresh *T for the target type.
	New func() any
}

// TargetProvider is the generated routing table of one group.
type TargetProvider interface {
	Group() string
	Resolve(subpath string) (Target, bool)
}

// Host receives registrations from generated activators.
type Host interface {
	RegisterService(key string, impl any)
	RegisterModule(m Module)
	RegisterTargetProvider(p TargetProvider)
}

// Activator is the signature of a generated Activate function.
type Activator func(Host)

// ServiceKey returns the registration key of service interface S: its fully
// qualified name, as written by the generator.
func ServiceKey[S any]() string {
	t := reflect.TypeOf((*S)(nil)).Elem()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
