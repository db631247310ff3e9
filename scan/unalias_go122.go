//go:build go1.22

package scan

import "go/types"

// unalias resolves alias types; go/types gained types.Unalias in Go 1.22.
func unalias(t types.Type) types.Type { return types.Unalias(t) }
