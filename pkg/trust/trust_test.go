package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cleanSnapshot(branch, head string) Snapshot {
	return Snapshot{
		Git: GitState{Branch: branch, HeadCommit: head, IsClean: true},
	}
}

func TestEvaluateTrustedWhenUnchangedAndClean(t *testing.T) {
	pre := cleanSnapshot("main", "abc123")
	post := cleanSnapshot("main", "abc123")

	status, violations := Evaluate(pre, post)
	assert.Equal(t, StatusTrusted, status)
	assert.Empty(t, violations)
}

func TestEvaluateTaintedOnBranchChange(t *testing.T) {
	pre := cleanSnapshot("main", "abc123")
	post := cleanSnapshot("feature", "abc123")

	status, violations := Evaluate(pre, post)
	assert.Equal(t, StatusTainted, status)
	assert.Contains(t, violations, "git.branch_changed")
}

func TestEvaluateTaintedOnHeadChange(t *testing.T) {
	pre := cleanSnapshot("main", "abc123")
	post := cleanSnapshot("main", "def456")

	status, violations := Evaluate(pre, post)
	assert.Equal(t, StatusTainted, status)
	assert.Contains(t, violations, "git.head_changed")
}

func TestEvaluateTaintedOnDirtyTree(t *testing.T) {
	pre := cleanSnapshot("main", "abc123")
	pre.Git.ModifiedFiles = []string{"foo.go"}
	pre.Git.IsClean = false
	post := cleanSnapshot("main", "abc123")

	status, violations := Evaluate(pre, post)
	assert.Equal(t, StatusTainted, status)
	assert.Contains(t, violations, "git.pre_not_clean")
	assert.Contains(t, violations, "git.pre_modified_files_present")
}
