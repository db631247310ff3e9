//go:build !go1.22

package scan

import "go/types"

// unalias is the identity before Go 1.22: go/types never materializes alias
// types there, so there is nothing to look through.
func unalias(t types.Type) types.Type { return t }
