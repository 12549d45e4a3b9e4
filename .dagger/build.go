package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/kotori/internal/dagger"
)

// Build and return directory of go binaries. sqlite-vec requires CGO, so
// binaries are built for linux on each architecture's native container.
func (k *Kotori) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := dag.Container(dagger.ContainerOpts{Platform: dagger.Platform("linux/" + goarch)}).
			From("golang:1.25-bookworm").
			WithExec([]string{"apt-get", "update"}).
			WithExec([]string{"apt-get", "install", "-y", "gcc"}).
			WithEnvVariable("CGO_ENABLED", "1").
			WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod-"+goarch)).
			WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+goarch)).
			WithDirectory("/src", k.Source).
			WithWorkdir("/src").
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/kotori"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (k *Kotori) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/kotori/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/kotori/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/kotori/pkg/utils.Buildtime=%s'", buildtime),
	}

	return k.Build(ctx, strings.Join(ldflags, " "))
}
