package git

import "context"

// IClient reads the revision a benchmark run is measuring.
type IClient interface {
	CurrentCommitSHA(ctx context.Context, dir string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	IsDirty(ctx context.Context, dir string) (bool, error)
}
