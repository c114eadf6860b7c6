package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// RodOptions configures how Chromium is started
type RodOptions struct {
	Headless  bool
	NoSandbox bool

	// Bin is the browser executable. Empty means rod looks one up or downloads it.
	Bin string

	// ControlURL connects to an already running browser instead of launching one.
	// Both ws:// DevTools URLs and http://host:port addresses are accepted.
	ControlURL string
}

// RodLauncher launches browsers with go-rod
type RodLauncher struct {
	opts RodOptions
}

// NewRodLauncher returns a new launcher
func NewRodLauncher(opts RodOptions) *RodLauncher {
	return &RodLauncher{opts: opts}
}

// Launch starts a browser process, or connects to ControlURL if set
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var proc *launcher.Launcher
	controlURL := l.opts.ControlURL

	if controlURL == "" {
		proc = launcher.New().Context(ctx).Headless(l.opts.Headless).NoSandbox(l.opts.NoSandbox)
		if l.opts.Bin != "" {
			proc = proc.Bin(l.opts.Bin)
		}

		logrus.WithFields(logrus.Fields{
			"headless": l.opts.Headless,
			"bin":      l.opts.Bin,
		}).Debug("launching browser")

		u, err := proc.Launch()
		if err != nil {
			abandon(proc)
			return nil, fmt.Errorf("could not launch browser: %w", err)
		}

		controlURL = u
	} else if !strings.HasPrefix(controlURL, "ws") {
		u, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s: %w", controlURL, err)
		}

		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if proc != nil {
			proc.Kill()
			proc.Cleanup()
		}

		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}

	return &rodBrowser{browser: b, proc: proc}, nil
}

// abandon kills a browser whose launch failed and removes its profile directory.
// Cleanup is not usable here, it blocks until a process that may never have started exits.
func abandon(proc *launcher.Launcher) {
	proc.Kill()
	if err := os.RemoveAll(proc.Get(flags.UserDataDir)); err != nil {
		logrus.WithError(err).Warn("could not remove browser profile")
	}
}

type rodBrowser struct {
	browser *rod.Browser

	// proc is nil when connected to a browser we did not start
	proc *launcher.Launcher

	mu     sync.Mutex
	pages  []*rod.Page
	closed bool
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("could not open page: %w", err)
	}

	b.pages = append(b.pages, p)
	return &rodPage{page: p}, nil
}

// Close closes the browser. A browser that was launched is killed if it
// does not shut down cleanly, and Close waits for the process to exit.
func (b *rodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.closed = true

	if b.proc == nil {
		// someone else owns this browser, only give back our tabs
		var firstErr error
		for _, p := range b.pages {
			if err := p.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		return firstErr
	}

	err := b.browser.Close()
	if err != nil {
		logrus.WithError(err).Warn("browser did not close cleanly, killing it")
		b.proc.Kill()
	}

	b.proc.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		var navErr *rod.NavigationError
		if errors.As(err, &navErr) {
			return &NavigationError{URL: url, Reason: navErr.Reason, Err: err}
		}

		return &NavigationError{URL: url, Err: err}
	}

	if err := page.WaitLoad(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	return nil
}

func (p *rodPage) Now(ctx context.Context) (int64, error) {
	res, err := p.page.Context(ctx).Eval(`() => Date.now()`)
	if err != nil {
		return 0, err
	}

	return int64(res.Value.Num()), nil
}

func (p *rodPage) Fill(ctx context.Context, selector, value string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("could not find %s: %w", selector, err)
	}

	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("could not clear %s: %w", selector, err)
	}

	if err := el.Input(value); err != nil {
		return fmt.Errorf("could not fill %s: %w", selector, err)
	}

	return nil
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("could not find %s: %w", selector, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("could not click %s: %w", selector, err)
	}

	return nil
}

func (p *rodPage) Probe(ctx context.Context, selector string) (ElementState, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return ElementState{}, err
	}

	visible, err := el.Visible()
	if err != nil {
		return ElementState{Found: true}, err
	}

	text, err := el.Text()
	if err != nil {
		return ElementState{Found: true, Visible: visible}, err
	}

	return ElementState{Found: true, Visible: visible, Text: text}, nil
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
