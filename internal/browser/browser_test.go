package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"
)

func TestNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_CONNECTION_REFUSED")

	err := &NavigationError{URL: "http://localhost:8000/register-supervisor.html", Reason: "net::ERR_CONNECTION_REFUSED", Err: cause}
	assert.EqualError(t, err, "could not navigate to http://localhost:8000/register-supervisor.html: net::ERR_CONNECTION_REFUSED")
	assert.True(t, errors.Is(err, cause))

	err = &NavigationError{URL: "http://x", Err: context.DeadlineExceeded}
	assert.EqualError(t, err, "could not navigate to http://x: context deadline exceeded")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var navErr *NavigationError
	assert.True(t, errors.As(error(err), &navErr))
}

func TestRodLauncher_canceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := NewRodLauncher(RodOptions{Headless: true}).Launch(ctx)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAbandon(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default"), 0o755))

	// never launched, so there is no process to wait for
	abandon(launcher.New().UserDataDir(dir))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRodLauncher_missingBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "no-such-chrome")

	b, err := NewRodLauncher(RodOptions{Headless: true, Bin: bin}).Launch(context.Background())
	assert.Nil(t, b)
	assert.Error(t, err)
}
