package pipeline

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// EncryptionScheme is the tag spec.md §6 requires every implementation to
// accept on the snapshot manifest, even though the bytes are now produced
// by a native Go AES-256-CBC+PBKDF2 implementation rather than a shelled-
// out openssl CLI invocation (see DESIGN.md).
const EncryptionScheme = "openssl-enc-aes-256-cbc-pbkdf2-salt"

const (
	pbkdf2Iterations = 200000
	saltSize         = 8
	keySize          = 32 // AES-256
)

// SnapshotManifest is the snapshot_manifest.json payload.
type SnapshotManifest struct {
	Kind             string `json:"kind"`
	SnapshotID       string `json:"snapshot_id"`
	WorkOrderID      string `json:"work_order_id"`
	EncryptionScheme string `json:"encryption_scheme"`
	SaltHex          string `json:"salt_hex"`
	IVHex            string `json:"iv_hex"`
	PBKDF2Iterations int    `json:"pbkdf2_iterations"`
	PlaintextSHA256  string `json:"plaintext_sha256"`
	CreatedAtUTC     string `json:"created_at_utc"`
}

type SnapshotExportInput struct {
	WorkOrderID  string
	SourceRoot   string // directory whose files are tarred, typically the artifact store root
	Passphrase   string
	CreatedAtUTC string
	SnapshotID   string // optional

	// Mirror, when non-nil, receives a copy of both the encrypted archive
	// and the manifest after they are durably written locally. A nil
	// Mirror is a valid no-op configuration.
	Mirror artifacts.SnapshotMirror
}

type SnapshotExportResult struct {
	SnapshotID     string `json:"snapshot_id"`
	ArchiveSHA256  string `json:"archive_sha256"`
	ArchivePath    string `json:"archive_path"`
	ManifestSHA256 string `json:"manifest_sha256"`
	ManifestPath   string `json:"manifest_path"`

	// ArchiveMirrorRef/ManifestMirrorRef carry the mirror's own content
	// reference for each blob, empty when no Mirror was configured.
	ArchiveMirrorRef  string `json:"archive_mirror_ref,omitempty"`
	ManifestMirrorRef string `json:"manifest_mirror_ref,omitempty"`
}

// SnapshotExport builds a deterministic plaintext tar of SourceRoot,
// encrypts it with AES-256-CBC keyed by PBKDF2(Passphrase, random salt),
// writes the ciphertext and a manifest under <root>/snapshots/<id>/, and
// registers both a SNAPSHOT_ARCHIVE and a SNAPSHOT_MANIFEST record, each
// parented to the work order. The plaintext tar never touches disk — it is
// built entirely in memory, matching spec.md §5's "no plaintext
// persistence" rule (stronger than the original's temp-file-plus-unlink
// approach, since there is no window in which a plaintext file exists on
// disk at all).
func SnapshotExport(ctx context.Context, store *artifacts.Store, reg *artifacts.Registry, in SnapshotExportInput) (SnapshotExportResult, error) {
	snapshotID := strings.TrimSpace(in.SnapshotID)
	if snapshotID == "" {
		snapshotID = in.WorkOrderID + "--snapshot"
	}

	layout := artifacts.NewLayout(store.Root())
	archivePath := layout.SnapshotArchivePath(snapshotID)
	manifestPath := layout.SnapshotManifestPath(snapshotID)

	archiveExists, err := reg.Contains(snapshotID, artifacts.KindSnapshotArchive)
	if err != nil {
		return SnapshotExportResult{}, err
	}
	manifestExists, err := reg.Contains(snapshotID+"--manifest", artifacts.KindSnapshotManifest)
	if err != nil {
		return SnapshotExportResult{}, err
	}
	if archiveExists && manifestExists {
		archiveSHA, err := artifacts.HashFile(archivePath)
		if err != nil {
			return SnapshotExportResult{}, err
		}
		manifestSHA, err := artifacts.HashFile(manifestPath)
		if err != nil {
			return SnapshotExportResult{}, err
		}
		return SnapshotExportResult{
			SnapshotID: snapshotID, ArchiveSHA256: archiveSHA, ArchivePath: archivePath,
			ManifestSHA256: manifestSHA, ManifestPath: manifestPath,
		}, nil
	}

	plaintext, err := buildDeterministicTar(in.SourceRoot)
	if err != nil {
		return SnapshotExportResult{}, err
	}
	plaintextSHA := artifacts.HashBytes(plaintext)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return SnapshotExportResult{}, err
	}
	key := pbkdf2.Key([]byte(in.Passphrase), salt, pbkdf2Iterations, keySize, sha256.New)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return SnapshotExportResult{}, err
	}

	ciphertext, err := encryptCBC(key, iv, plaintext)
	if err != nil {
		return SnapshotExportResult{}, err
	}

	if err := store.WriteFile(archivePath, ciphertext); err != nil {
		return SnapshotExportResult{}, err
	}
	archiveSHA := artifacts.HashBytes(ciphertext)

	manifest := SnapshotManifest{
		Kind:             "snapshot.manifest",
		SnapshotID:       snapshotID,
		WorkOrderID:      in.WorkOrderID,
		EncryptionScheme: EncryptionScheme,
		SaltHex:          hex.EncodeToString(salt),
		IVHex:            hex.EncodeToString(iv),
		PBKDF2Iterations: pbkdf2Iterations,
		PlaintextSHA256:  plaintextSHA,
		CreatedAtUTC:     in.CreatedAtUTC,
	}
	manifestBody, err := canonicalize.Bytes(manifest)
	if err != nil {
		return SnapshotExportResult{}, err
	}
	if err := store.WriteFile(manifestPath, manifestBody); err != nil {
		return SnapshotExportResult{}, err
	}
	manifestSHA := artifacts.HashBytes(manifestBody)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        snapshotID,
		Kind:              artifacts.KindSnapshotArchive,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            archiveSHA,
		ByteSize:          int64(len(ciphertext)),
		MediaType:         "application/octet-stream",
		ParentArtifactIDs: []string{in.WorkOrderID},
		Notes:             "snapshot_export",
	}); err != nil {
		return SnapshotExportResult{}, err
	}

	if err := reg.Append(artifacts.Record{
		ArtifactID:        snapshotID + "--manifest",
		Kind:              artifacts.KindSnapshotManifest,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            manifestSHA,
		ByteSize:          int64(len(manifestBody)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{in.WorkOrderID},
		Notes:             "snapshot_export",
	}); err != nil {
		return SnapshotExportResult{}, err
	}

	var archiveRef, manifestRef string
	if in.Mirror != nil {
		archiveRef, err = in.Mirror.Store(ctx, ciphertext)
		if err != nil {
			return SnapshotExportResult{}, err
		}
		manifestRef, err = in.Mirror.Store(ctx, manifestBody)
		if err != nil {
			return SnapshotExportResult{}, err
		}
	}

	return SnapshotExportResult{
		SnapshotID: snapshotID, ArchiveSHA256: archiveSHA, ArchivePath: archivePath,
		ManifestSHA256: manifestSHA, ManifestPath: manifestPath,
		ArchiveMirrorRef: archiveRef, ManifestMirrorRef: manifestRef,
	}, nil
}

// buildDeterministicTar walks root, collects every regular file sorted by
// archive-relative POSIX path, and writes a GNU-format tar with mtime, uid,
// gid, uname, and gname all zeroed so the resulting bytes depend only on
// file contents and relative paths — never on wall-clock time or the
// invoking user.
func buildDeterministicTar(root string) ([]byte, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, rel := range paths {
		full := filepath.Join(root, rel)
		info, err := os.Stat(full)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}

		hdr := &tar.Header{
			Format:   tar.FormatGNU,
			Name:     filepath.ToSlash(rel),
			Size:     int64(len(data)),
			Mode:     int64(info.Mode().Perm()),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write(data); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(data, padding...)
}
