package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNotRepository is returned when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

var execCommandContext = exec.CommandContext

// Client handles git interactions.
type Client struct {
	// Timeout bounds each git invocation. Zero means 10 seconds.
	Timeout time.Duration
}

// NewClient creates a new Git client.
func NewClient() *Client {
	return &Client{Timeout: 10 * time.Second}
}

func (c *Client) output(ctx context.Context, dir string, args ...string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var outBuf, errBuf bytes.Buffer
	cmd := execCommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Enforce no prompting
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(errBuf.String())
		if strings.Contains(stderr, "not a git repository") {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return "", fmt.Errorf("git %s failed: %w\nStderr: %s", args[0], err, stderr)
	}
	return strings.TrimSpace(outBuf.String()), nil
}

// CurrentCommitSHA returns the full SHA of HEAD.
func (c *Client) CurrentCommitSHA(ctx context.Context, dir string) (string, error) {
	return c.output(ctx, dir, "rev-parse", "HEAD")
}

// CurrentBranch returns the checked out branch, or "" on a detached HEAD.
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return c.output(ctx, dir, "branch", "--show-current")
}

// IsDirty reports whether the work tree has uncommitted changes.
func (c *Client) IsDirty(ctx context.Context, dir string) (bool, error) {
	out, err := c.output(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Revision is the git state recorded alongside a suite.
type Revision struct {
	SHA    string
	Branch string
	Dirty  bool
}

// Describe gathers the revision of dir. A dirty work tree marks the SHA
// with a "-dirty" suffix so results are never attributed to a clean commit.
func Describe(ctx context.Context, c IClient, dir string) (Revision, error) {
	sha, err := c.CurrentCommitSHA(ctx, dir)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{SHA: sha}
	if rev.Branch, err = c.CurrentBranch(ctx, dir); err != nil {
		return Revision{}, err
	}
	if rev.Dirty, err = c.IsDirty(ctx, dir); err != nil {
		return Revision{}, err
	}
	return rev, nil
}

// Label is the value stored as the suite's git SHA.
func (r Revision) Label() string {
	if r.Dirty {
		return r.SHA + "-dirty"
	}
	return r.SHA
}
