package git

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock of the git.Client for testing purposes.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CurrentCommitSHA(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

func (m *MockClient) CurrentBranch(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

func (m *MockClient) IsDirty(ctx context.Context, dir string) (bool, error) {
	args := m.Called(ctx, dir)
	return args.Bool(0), args.Error(1)
}
