package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"dagger/kotori/internal/dagger"
)

// releaseArches are the linux architectures Build produces.
var releaseArches = []string{"amd64", "arm64"}

// bucket is an S3-compatible destination for release archives.
type bucket struct {
	endpoint        *dagger.Secret
	name            *dagger.Secret
	accessKeyID     *dagger.Secret
	secretAccessKey *dagger.Secret
}

// Package builds versioned binaries and returns one
// kotori_<version>_linux_<arch>.tar.gz per architecture plus checksums.txt.
func (k *Kotori) Package(
	ctx context.Context,

	// Version string of build (e.g., "v0.3.0")
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	binaries := k.BuildRelease(ctx, version, commit)

	archiver := dag.Container().
		From("alpine:3.20").
		WithDirectory("/in", binaries).
		WithWorkdir("/out")

	for _, arch := range releaseArches {
		archive := fmt.Sprintf("kotori_%s_linux_%s.tar.gz", version, arch)
		archiver = archiver.WithExec([]string{
			"tar", "-czf", archive, "-C", path.Join("/in", "linux", arch), "kotori",
		})
	}

	return archiver.
		WithExec([]string{"sh", "-c", "sha256sum *.tar.gz > checksums.txt"}).
		Directory("/out")
}

// publish syncs archives to <bucket>/kotori/<prefix>.
func (k *Kotori) publish(ctx context.Context, archives *dagger.Directory, prefix string, b bucket) error {
	name, err := b.name.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket name: %w", err)
	}
	endpoint, err := b.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket endpoint: %w", err)
	}

	destination := "s3://" + path.Join(name, "kotori", prefix)

	_, err = dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", b.accessKeyID).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", b.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/archives", archives).
		WithWorkdir("/archives").
		WithExec([]string{"aws", "s3", "sync", ".", destination, "--endpoint-url", endpoint, "--delete"}).
		Sync(ctx)
	if err != nil {
		return fmt.Errorf("syncing to %s: %w", destination, err)
	}
	return nil
}

// Release packages a tagged version and publishes it under
// kotori/releases/<version> and kotori/releases/latest.
func (k *Kotori) Release(
	ctx context.Context,

	// Release tag, must start with "v" (e.g., "v0.3.0")
	version string,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyID *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	if !strings.HasPrefix(version, "v") {
		return nil, fmt.Errorf("release version %q must start with v", version)
	}

	b := bucket{endpoint: endpoint, name: bucketName, accessKeyID: accessKeyID, secretAccessKey: secretAccessKey}
	archives := k.Package(ctx, version, commit)

	for _, prefix := range []string{path.Join("releases", version), path.Join("releases", "latest")} {
		if err := k.publish(ctx, archives, prefix, b); err != nil {
			return archives, err
		}
	}
	return archives, nil
}

// Nightly packages the given commit as nightly-<short sha> and publishes it
// under kotori/nightly, replacing the previous nightly.
func (k *Kotori) Nightly(
	ctx context.Context,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyID *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}

	b := bucket{endpoint: endpoint, name: bucketName, accessKeyID: accessKeyID, secretAccessKey: secretAccessKey}
	archives := k.Package(ctx, "nightly-"+short, commit)
	return archives, k.publish(ctx, archives, "nightly", b)
}
