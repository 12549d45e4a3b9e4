package main

import (
	"context"
	"fmt"

	"dagger/kotori/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts returns the common GolangcilintOpts used by both CheckLint and FixLint.
// It layers golangci-lint on top of goContainer() so the sqlite dev headers,
// CGO, and Go caches are already in place.
func (k *Kotori) lintOpts() dagger.GolangcilintOpts {
	base := k.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  k.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint against the kotori source code without applying fixes.
func (k *Kotori) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(k.Source, k.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint against the kotori source code with --fix, applying
// automatic fixes where possible, and returns the modified source directory.
func (k *Kotori) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(k.Source, k.lintOpts()).Lint()
}
