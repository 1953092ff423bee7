//go:build !wasip1 && !wasip2 && !tinygo

package golemoci

import (
	"bytes"
	"context"
	"fmt"
	"io"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/regclient/regclient"
	"github.com/regclient/regclient/types/descriptor"
	"github.com/regclient/regclient/types/manifest"
	"github.com/regclient/regclient/types/ref"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

func newClient(hostCredentialsPath string) (*regclient.RegClient, error) {
	opts := []regclient.Opt{regclient.WithDockerCreds()}
	if hostCredentialsPath != "" {
		hosts, err := LoadCredentials(hostCredentialsPath)
		if err != nil {
			return nil, err
		}
		if len(hosts) > 0 {
			opts = append(opts, regclient.WithConfigHost(hosts...))
		}
	}
	return regclient.New(opts...), nil
}

// PublishSchema pushes schema as an OCI artifact to path, annotated with
// schema.Ident, reading registry credentials from hostCredentialsPath if
// non-empty.
func PublishSchema(ctx context.Context, path, hostCredentialsPath string, schema wit.AgentClassSchema) error {
	r, err := ref.New(path)
	if err != nil {
		return golemerr.Wrap(golemerr.SchemaConstruction, err, "publish schema: parsing ref %q", path)
	}

	rc, err := newClient(hostCredentialsPath)
	if err != nil {
		return err
	}
	defer rc.Close(ctx, r)

	payload, err := EncodeBundle(schema)
	if err != nil {
		return err
	}

	configDesc, err := rc.BlobPut(ctx, r, descriptor.Descriptor{MediaType: ArtifactConfigMediaType}, bytes.NewReader([]byte("{}")))
	if err != nil {
		return golemerr.Wrap(golemerr.RpcError, err, "publish schema: pushing config blob")
	}
	layerDesc, err := rc.BlobPut(ctx, r, descriptor.Descriptor{MediaType: ArtifactMediaType}, bytes.NewReader(payload))
	if err != nil {
		return golemerr.Wrap(golemerr.RpcError, err, "publish schema: pushing bundle layer")
	}

	m, err := manifest.New(manifest.WithOrig(ociv1.Manifest{
		Versioned: ociv1.Versioned{SchemaVersion: 2},
		MediaType: ociv1.MediaTypeImageManifest,
		Config:    ociv1.Descriptor{MediaType: configDesc.MediaType, Digest: configDesc.Digest, Size: configDesc.Size},
		Layers: []ociv1.Descriptor{
			{MediaType: layerDesc.MediaType, Digest: layerDesc.Digest, Size: layerDesc.Size},
		},
		Annotations: map[string]string{"golem.agent-class.ident": schema.Ident.String()},
	}))
	if err != nil {
		return golemerr.Wrap(golemerr.SchemaConstruction, err, "publish schema: building manifest")
	}
	if err := rc.ManifestPut(ctx, r, m); err != nil {
		return golemerr.Wrap(golemerr.RpcError, err, "publish schema: pushing manifest")
	}
	return nil
}

// PullSchema fetches the schema bundle published at path.
func PullSchema(ctx context.Context, path, hostCredentialsPath string) (wit.AgentClassSchema, error) {
	r, err := ref.New(path)
	if err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "pull schema: parsing ref %q", path)
	}

	rc, err := newClient(hostCredentialsPath)
	if err != nil {
		return wit.AgentClassSchema{}, err
	}
	defer rc.Close(ctx, r)

	m, err := rc.ManifestGet(ctx, r)
	if err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.RpcError, err, "pull schema: fetching manifest")
	}
	mi, ok := m.(manifest.Imager)
	if !ok {
		return wit.AgentClassSchema{}, golemerr.New(golemerr.SchemaConstruction, "pull schema: manifest does not support image methods")
	}
	layers, err := mi.GetLayers()
	if err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "pull schema: reading layers")
	}

	var bundleLayer *descriptor.Descriptor
	for i, l := range layers {
		if l.MediaType == ArtifactMediaType {
			bundleLayer = &layers[i]
			break
		}
	}
	if bundleLayer == nil {
		if len(layers) == 0 {
			return wit.AgentClassSchema{}, golemerr.New(golemerr.SchemaConstruction, "pull schema: no layers found in the artifact")
		}
		bundleLayer = &layers[0]
	}
	if err := bundleLayer.Digest.Validate(); err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "pull schema: layer has an invalid digest")
	}

	rdr, err := rc.BlobGet(ctx, r, *bundleLayer)
	if err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.RpcError, err, "pull schema: fetching blob")
	}
	defer rdr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rdr); err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "pull schema: reading blob content")
	}

	schema, err := DecodeBundle(buf.Bytes())
	if err != nil {
		return wit.AgentClassSchema{}, fmt.Errorf("pull schema: %w", err)
	}
	return schema, nil
}
