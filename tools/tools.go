//go:build tools

// Package tools pins development tooling versions for this repository.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
