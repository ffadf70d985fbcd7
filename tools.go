//go:build tools
// +build tools

// This file pins the code generators used by `go generate` (mockgen)
// so go.mod and go.sum track them.
package chat_sync

import (
	_ "go.uber.org/mock/mockgen"
)
