// Kotori CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/kotori/internal/dagger"
)

// Kotori is the main module for the Kotori CI/CD pipeline
type Kotori struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Kotori CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".kotori", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Kotori {
	return &Kotori{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc and
// CGO enabled for the sqlite-vec driver, with the project source mounted.
func (k *Kotori) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", k.Source)
}

// Test runs the kotori unit tests via "go test"
func (k *Kotori) Test(ctx context.Context) (string, error) {
	return k.goContainer().
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// Serve runs the kotori API with the in-memory vector store and the
// deterministic hash embedder, for smoke testing against a local Ollama.
func (k *Kotori) Serve(
	// Ollama base URL reachable from the container
	// +default="http://host.docker.internal:11434"
	ollama string,
) *dagger.Service {
	return k.goContainer().
		WithEnvVariable("KOTORI_LLM_PROVIDER", "ollama").
		WithEnvVariable("KOTORI_LLM_BASE_URL", ollama).
		WithEnvVariable("KOTORI_VECTOR_STORE_PROVIDER", "memory").
		WithEnvVariable("KOTORI_EMBEDDING_PROVIDER", "hash").
		WithExposedPort(8081).
		AsService(dagger.ContainerAsServiceOpts{
			Args: []string{"go", "run", "./cli/kotori", "serve", "--listen", ":8081"},
		})
}
