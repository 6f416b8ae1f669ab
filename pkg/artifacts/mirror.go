package artifacts

import "context"

// SnapshotMirror pushes already-written snapshot bytes (the encrypted
// archive and its manifest) to durable off-site storage, keyed by their
// content hash, so a snapshot export survives the loss of the local
// artifact store. A nil SnapshotMirror is a valid, fully supported
// configuration: snapshot_export simply skips the mirror push.
type SnapshotMirror interface {
	Store(ctx context.Context, data []byte) (string, error)
}
