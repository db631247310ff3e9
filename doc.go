// Package modkit generates the glue of modular Go applications at build time.
//
// Types opt in with directives:
//
//   - //modkit:target /group/sub marks a routable type reachable by path
//   - //modkit:service marks the implementation of a service interface
//   - //modkit:module marks the one module type of a compilation
//
// The generator validates every declaration across passes and writes two files
// into the output package: a routing table (Routes) and an activator
// (Activate) that registers services, the module and the routes with a
// kit.Host. Nothing is written when any check fails.
//
// Layout:
//   - kit: runtime support linked into applications (Registry, boot tasks)
//   - route: "/group/subpath" parsing shared by generator and runtime
//   - processor: the pass coordinator and the declaration tables
//   - scan: directive discovery on type-checked packages
//   - emit: artifact model and Go rendering
//   - filer: staged and on-disk output
//   - codegen: one compilation, end to end
//   - project: HCL project files for multi-module runs
//   - logging: zap setup
//   - cmd/modkit: the command line
//   - examples/travel: a hotel module and a pay service wired through kit
package modkit
