// Package gitclone parses GitHub repository references and manages a
// local, persistent clone of each one under the store's base directory, so
// a remote project can be indexed the same way a local directory is.
package gitclone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"

	coreerrors "github.com/codeqa/engine/internal/errors"
)

// retryConfig governs the exponential backoff applied to clone and pull
// network calls, which fail transiently on flaky connections and DNS
// hiccups far more often than they fail for good. Shorter delays than
// coreerrors.DefaultRetryConfig(): a CLI invocation shouldn't block a user
// for tens of seconds before surfacing a genuine failure.
var retryConfig = coreerrors.RetryConfig{
	MaxRetries:   2,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     1 * time.Second,
	Multiplier:   2.0,
}

// urlPattern matches https://github.com/owner/repo, github.com/owner/repo,
// and the same with an optional ".git" suffix and trailing slash.
var urlPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?)(?:\.git)?/?$`)

// shorthandPattern matches the bare "owner/repo" form.
var shorthandPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+)$`)

// ParseGitHubURL extracts "owner/repo" from a GitHub URL or shorthand.
// It returns coreerrors.InvalidURL when raw matches neither form.
func ParseGitHubURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if m := urlPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}
	if m := shorthandPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}
	return "", coreerrors.InvalidURL(raw)
}

// Flatten turns "owner/repo" into the on-disk directory name "owner_repo".
func Flatten(ownerRepo string) string {
	return strings.ReplaceAll(ownerRepo, "/", "_")
}

// Result reports the outcome of CloneOrPull.
type Result struct {
	Path      string
	OwnerRepo string
	Action    string // "cloned" or "updated"
}

// CloneOrPull ensures a local clone of ownerRepo exists under
// <reposDir>/<owner_repo_flat>, cloning fresh (depth 1) the first time and
// fast-forward pulling on every subsequent call. The network call is
// retried with exponential backoff on transient failures.
func CloneOrPull(ctx context.Context, reposDir, ownerRepo string) (*Result, error) {
	cloneURL := fmt.Sprintf("https://github.com/%s.git", ownerRepo)
	return cloneOrPullFrom(ctx, reposDir, ownerRepo, cloneURL)
}

// cloneOrPullFrom is CloneOrPull with the remote URL as a parameter, so
// tests can point it at a local fixture repository instead of github.com.
func cloneOrPullFrom(ctx context.Context, reposDir, ownerRepo, cloneURL string) (*Result, error) {
	targetDir := filepath.Join(reposDir, Flatten(ownerRepo))

	if info, err := os.Stat(filepath.Join(targetDir, ".git")); err == nil && info.IsDir() {
		return pull(ctx, targetDir, ownerRepo)
	}

	return clone(ctx, reposDir, targetDir, ownerRepo, cloneURL)
}

func clone(ctx context.Context, reposDir, targetDir, ownerRepo, cloneURL string) (*Result, error) {
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		return nil, coreerrors.Wrap(coreerrors.ErrCodePermissionDenied, err).WithDetail("path", reposDir)
	}

	err := coreerrors.Retry(ctx, retryConfig, func() error {
		_, cloneErr := git.PlainClone(targetDir, false, &git.CloneOptions{
			URL:   cloneURL,
			Depth: 1,
		})
		return cloneErr
	})
	if err != nil {
		_ = os.RemoveAll(targetDir)
		return nil, coreerrors.New(coreerrors.ErrCodeInvalidURL,
			fmt.Sprintf("git clone failed for %s: %s", ownerRepo, err.Error()), err).
			WithDetail("owner_repo", ownerRepo)
	}

	return &Result{Path: targetDir, OwnerRepo: ownerRepo, Action: "cloned"}, nil
}

func pull(ctx context.Context, targetDir, ownerRepo string) (*Result, error) {
	repo, err := git.PlainOpen(targetDir)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.ErrCodeInvalidURL, err).WithDetail("owner_repo", ownerRepo)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.ErrCodeInvalidURL, err).WithDetail("owner_repo", ownerRepo)
	}

	err = coreerrors.Retry(ctx, retryConfig, func() error {
		pullErr := worktree.Pull(&git.PullOptions{Depth: 1})
		if pullErr == git.NoErrAlreadyUpToDate {
			return nil
		}
		return pullErr
	})
	if err != nil {
		return nil, coreerrors.New(coreerrors.ErrCodeInvalidURL,
			fmt.Sprintf("git pull failed for %s: %s", ownerRepo, err.Error()), err).
			WithDetail("owner_repo", ownerRepo)
	}

	return &Result{Path: targetDir, OwnerRepo: ownerRepo, Action: "updated"}, nil
}
