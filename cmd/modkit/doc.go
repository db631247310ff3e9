// Command modkit generates the routing and activator artifacts of a module.
//
// Types opt in with directives in their doc comment:
//
//	//modkit:target /hotel/detail
//	type HotelDetail struct{}
//
//	//modkit:service
//	type PayServiceImpl struct{}
//
//	//modkit:module
//	type HotelModule struct{ kit.BaseModule }
//
// modkit scans the given packages, validates every declaration and writes
// modkit_routes.gen.go and modkit_activator.gen.go into the output package.
// Nothing is written when any check fails.
//
// A service implementation must implement exactly one interface embedding
// kit.Service among the scanned packages and their imports; unexported ones
// count only in the output package. Method
// sets are compared structurally, so an interface whose methods are a subset
// of another's makes implementations of the larger one ambiguous. The output
// package must not declare Routes or Activate itself.
//
// Typical go:generate usage, from the output package:
//
//	//go:generate go run github.com/sghaida/modkit/cmd/modkit generate --dir ../.. --output . ./hotel/... ./pay/...
//
// Commands
//
//   - generate: scan and write the artifacts
//   - check: scan and report generated files that are out of date (exit code 3)
//   - config init: write a configuration template (json, yaml or toml)
//   - version: print the version
//
// Both generate and check accept --project to run every module block of an HCL
// project file.
//
// Flags can also come from modkit.json, modkit.yaml, modkit.yml or modkit.toml
// in the working directory, from the file named by --config or MODKIT_CONFIG,
// and from MODKIT_* environment variables. Flags win over files.
package main
