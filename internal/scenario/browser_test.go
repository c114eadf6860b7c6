package scenario

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"registration-verifier/internal/account"
	"registration-verifier/internal/browser"
	"registration-verifier/internal/fixture"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browserRunner returns a runner backed by a real Chromium, skipping the test if none is installed
func browserRunner(t *testing.T, url string) (*Runner, Options) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	bin, found := launcher.LookPath()
	if !found {
		t.Skip("no Chromium found")
	}

	opts := testOptions(t.TempDir())
	opts.URL = url
	opts.Timeout = 10 * time.Second
	opts.NavigationTimeout = 10 * time.Second
	opts.ActionTimeout = 5 * time.Second
	opts.PollInterval = 50 * time.Millisecond

	l := browser.NewRodLauncher(browser.RodOptions{
		Headless:  true,
		NoSandbox: os.Getenv("CI") != "",
		Bin:       bin,
	})
	accounts := account.NewGenerator("test-supervisor", "example.com", "password123")

	return NewRunner(l, accounts, opts), opts
}

func fixtureServer(t *testing.T, mode fixture.Mode) (*fixture.Server, string) {
	t.Helper()

	s, err := fixture.NewServer(mode, 100*time.Millisecond, "test")
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts.URL + fixture.RegisterPath
}

func TestRunner_Run_Browser_partialSuccess(t *testing.T) {
	s, url := fixtureServer(t, fixture.ModePartial)
	r, opts := browserRunner(t, url)

	res := r.Run(context.Background())
	require.NoError(t, res.Err())
	assert.Equal(t, fixture.MessagePartialSuccess, res.MessageText)
	assert.Equal(t, []string{res.Email}, s.Accounts())
	assertArtifact(t, opts, true)

	second := r.Run(context.Background())
	require.NoError(t, second.Err())
	assert.Len(t, s.Accounts(), 2)
}

func TestRunner_Run_Browser_fullSuccess(t *testing.T) {
	_, url := fixtureServer(t, fixture.ModeSuccess)
	r, opts := browserRunner(t, url)

	res := r.Run(context.Background())
	assert.Equal(t, KindMismatch, res.Kind())
	assert.Contains(t, res.MessageText, "registrado com sucesso")
	assertArtifact(t, opts, false)
}

func TestRunner_Run_Browser_silent(t *testing.T) {
	_, url := fixtureServer(t, fixture.ModeSilent)
	r, opts := browserRunner(t, url)
	r.opts.Timeout = time.Second

	res := r.Run(context.Background())
	assert.Equal(t, KindTimeout, res.Kind())
	assertArtifact(t, opts, false)
}

func TestRunner_Run_Browser_unreachable(t *testing.T) {
	// grab a free port and release it so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	r, opts := browserRunner(t, "http://"+addr+fixture.RegisterPath)

	res := r.Run(context.Background())
	assert.Equal(t, KindNavigation, res.Kind())
	assert.Equal(t, filepath.Clean(opts.ErrorPath), filepath.Clean(res.Screenshot))
	assertArtifact(t, opts, false)
}
