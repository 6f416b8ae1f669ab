// Package trust implements C9: a pure, read-only trust snapshot collector
// and a deterministic classifier comparing a pre- and post-snapshot pair.
package trust

import (
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// GitState is the git-derived portion of a snapshot.
type GitState struct {
	Branch         string   `json:"branch"`
	HeadCommit     string   `json:"head_commit"`
	IsClean        bool     `json:"is_clean"`
	ModifiedFiles  []string `json:"modified_files"`
	UntrackedFiles []string `json:"untracked_files"`
}

// FSState is the filesystem-derived portion of a snapshot.
type FSState struct {
	RepoRoot string `json:"repo_root"`
}

// RuntimeState substitutes Go runtime info for the Python original's
// runtime.python_version/platform.
type RuntimeState struct {
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Snapshot is a single point-in-time, best-effort observation of repo
// trust state. Subprocess failures never raise — they degrade to empty
// strings/slices, matching adam_os/trust/snapshot.py.
type Snapshot struct {
	TimestampUTC string       `json:"timestamp_utc"`
	Git          GitState     `json:"git"`
	FS           FSState      `json:"fs"`
	Runtime      RuntimeState `json:"runtime"`
}

// Clock is injected so callers control the timestamp; spec.md forbids
// clock reads inside pipeline stages, but a trust snapshot is explicitly
// exempt (it exists to observe wall-clock-adjacent repo state).
type Clock func() time.Time

// Collect gathers a best-effort snapshot of repoRoot's git state.
func Collect(repoRoot string, now Clock) Snapshot {
	branch := runGit(repoRoot, "branch", "--show-current")
	head := runGit(repoRoot, "rev-parse", "HEAD")
	porcelain := runGit(repoRoot, "status", "--porcelain=v1")

	var modified, untracked []string
	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 3 {
			continue
		}
		status := line[:2]
		path := strings.TrimSpace(line[2:])
		if status == "??" {
			untracked = append(untracked, path)
		} else {
			modified = append(modified, path)
		}
	}

	return Snapshot{
		TimestampUTC: now().UTC().Format(time.RFC3339),
		Git: GitState{
			Branch:         branch,
			HeadCommit:     head,
			IsClean:        len(modified) == 0 && len(untracked) == 0,
			ModifiedFiles:  modified,
			UntrackedFiles: untracked,
		},
		FS: FSState{RepoRoot: repoRoot},
		Runtime: RuntimeState{
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
	}
}

func runGit(repoRoot string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
