package config

import (
	"context"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// BuildSnapshotMirror constructs the off-site snapshot mirror for this
// deployment from ADAMOS_SNAPSHOT_MIRROR_TYPE, following the same
// type-switched env-with-defaults shape as BuildGate. An empty
// SnapshotMirrorType is a valid configuration: it returns a nil
// SnapshotMirror, and snapshot_export simply skips mirroring.
func (c *Config) BuildSnapshotMirror(ctx context.Context) (artifacts.SnapshotMirror, error) {
	switch c.SnapshotMirrorType {
	case "":
		return nil, nil
	case "s3":
		if c.SnapshotMirrorBucket == "" {
			return nil, fmt.Errorf("config: ADAMOS_SNAPSHOT_MIRROR_BUCKET is required for s3 snapshot mirroring")
		}
		return artifacts.NewS3Mirror(ctx, artifacts.S3MirrorConfig{
			Bucket:   c.SnapshotMirrorBucket,
			Region:   c.SnapshotMirrorRegion,
			Endpoint: c.SnapshotMirrorEndpoint,
			Prefix:   c.SnapshotMirrorPrefix,
		})
	case "gcs":
		if c.SnapshotMirrorBucket == "" {
			return nil, fmt.Errorf("config: ADAMOS_SNAPSHOT_MIRROR_BUCKET is required for gcs snapshot mirroring")
		}
		return artifacts.NewGCSMirror(ctx, artifacts.GCSMirrorConfig{
			Bucket: c.SnapshotMirrorBucket,
			Prefix: c.SnapshotMirrorPrefix,
		})
	default:
		return nil, fmt.Errorf("config: unsupported ADAMOS_SNAPSHOT_MIRROR_TYPE %q", c.SnapshotMirrorType)
	}
}
