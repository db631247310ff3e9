// Package kit is the runtime side of modkit.
//
// Generated activators talk to a Host: they register every service
// implementation under its service interface, the module (if any) and the
// routing table of the module's group. Registry is the Host shipped with the
// package; it records conflicts instead of panicking so the composition root can
// report every wiring problem at once.
//
// Marker types:
//
//	type PayService interface {
//		kit.Service
//		Pay(amount int) error
//	}
//
//	//modkit:service
//	type PayServiceImpl struct{}
//
//	//modkit:module
//	type HotelModule struct {
//		kit.BaseModule
//	}
//
// Wiring remains explicit. Nothing here walks a dependency graph or injects
// fields; the registry only stores what activators hand it.
//
// Import
//
//	"github.com/sghaida/modkit/kit"
package kit
