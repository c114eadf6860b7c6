// Package scenario drives a browser through the supervisor registration form
// and checks the message the page shows afterwards.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"registration-verifier/internal/account"
	"registration-verifier/internal/browser"
	"registration-verifier/internal/config"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/utils"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

var errNotReady = errors.New("message not ready")

// Selectors address the registration form
type Selectors struct {
	Email           string
	Password        string
	ConfirmPassword string
	Submit          string
	Message         string
}

// Options control a verification run
type Options struct {
	URL          string
	Selectors    Selectors
	ExpectedText string

	// Timeout bounds the wait for the message element
	Timeout           time.Duration
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
	PollInterval      time.Duration

	SuccessPath string
	ErrorPath   string
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		URL: cfg.URL(),
		Selectors: Selectors{
			Email:           cfg.Form.Email,
			Password:        cfg.Form.Password,
			ConfirmPassword: cfg.Form.ConfirmPassword,
			Submit:          cfg.Form.Submit,
			Message:         cfg.Form.Message,
		},
		ExpectedText:      cfg.ExpectedText,
		Timeout:           cfg.Timeout,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		ActionTimeout:     cfg.Browser.ActionTimeout,
		PollInterval:      cfg.Browser.PollInterval,
		SuccessPath:       cfg.Artifacts.Success,
		ErrorPath:         cfg.Artifacts.Error,
	}
}

// Runner performs verification runs
type Runner struct {
	launcher browser.Launcher
	accounts *account.Generator
	opts     Options

	writeFile func(path string, data []byte) error
}

// NewRunner returns a new Runner
func NewRunner(launcher browser.Launcher, accounts *account.Generator, opts Options) *Runner {
	defaults := config.DefaultConfig()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = defaults.Browser.NavigationTimeout
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = defaults.Browser.ActionTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.Browser.PollInterval
	}

	return &Runner{
		launcher: launcher,
		accounts: accounts,
		opts:     opts,
		writeFile: func(path string, data []byte) error {
			return utils.OutputFile(path, data)
		},
	}
}

// Run performs one registration and verifies the resulting message.
// The browser is closed before Run returns, whatever the outcome.
// Exactly one of the success or error screenshots is written, unless no page could be opened.
func (r *Runner) Run(ctx context.Context) *Result {
	res := &Result{Started: time.Now()}
	defer func() {
		res.Finished = time.Now()
	}()

	r.removeArtifacts()

	b, err := r.launcher.Launch(ctx)
	if err != nil {
		res.Failure = &Failure{Kind: KindBrowser, Step: "launch browser", Err: err}
		return res
	}
	defer func() {
		if err := b.Close(); err != nil {
			logrus.WithError(err).Warn("could not close browser")
		}
	}()

	page, err := b.NewPage(ctx)
	if err != nil {
		res.Failure = &Failure{Kind: KindBrowser, Step: "open page", Err: err}
		return res
	}

	if failure := r.verify(ctx, page, res); failure != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// interrupted, whatever step was running
			failure = &Failure{Kind: KindInteraction, Step: failure.Step, Detail: failure.Detail, Err: ctx.Err()}
		}

		res.Failure = failure
		r.capture(ctx, page, r.opts.ErrorPath, res)
		return res
	}

	if err := r.capture(ctx, page, r.opts.SuccessPath, res); err != nil {
		res.Failure = &Failure{Kind: KindArtifact, Step: "screenshot", Detail: r.opts.SuccessPath, Err: err}
		r.capture(ctx, page, r.opts.ErrorPath, res)
	}

	return res
}

func (r *Runner) verify(ctx context.Context, page browser.Page, res *Result) *Failure {
	log := logrus.WithField("url", r.opts.URL)

	log.Info("loading registration page")
	navCtx, cancel := context.WithTimeout(ctx, r.opts.NavigationTimeout)
	err := page.Navigate(navCtx, r.opts.URL)
	cancel()
	if err != nil {
		return &Failure{Kind: KindNavigation, Step: "navigate", Detail: r.opts.URL, Err: err}
	}

	var now int64
	if err := r.act(ctx, func(ctx context.Context) (err error) {
		now, err = page.Now(ctx)
		return err
	}); err != nil {
		return &Failure{Kind: KindInteraction, Step: "read page clock", Err: err}
	}

	creds, err := r.accounts.Credentials(now)
	if err != nil {
		return &Failure{Kind: KindInteraction, Step: "generate credentials", Err: err}
	}
	res.Email = creds.Email
	log = log.WithField("email", creds.Email)

	fields := []struct {
		step, selector, value string
	}{
		{"fill email", r.opts.Selectors.Email, creds.Email},
		{"fill password", r.opts.Selectors.Password, creds.Password},
		{"fill confirm password", r.opts.Selectors.ConfirmPassword, creds.Password},
	}

	for _, f := range fields {
		f := f
		if err := r.act(ctx, func(ctx context.Context) error {
			return page.Fill(ctx, f.selector, f.value)
		}); err != nil {
			return &Failure{Kind: KindInteraction, Step: f.step, Detail: f.selector, Err: err}
		}
	}

	log.Info("submitting registration")
	if err := r.act(ctx, func(ctx context.Context) error {
		return page.Click(ctx, r.opts.Selectors.Submit)
	}); err != nil {
		return &Failure{Kind: KindInteraction, Step: "submit", Detail: r.opts.Selectors.Submit, Err: err}
	}

	return r.waitForMessage(ctx, page, res)
}

// waitForMessage polls the message element until it is visible and contains the expected text
func (r *Runner) waitForMessage(ctx context.Context, page browser.Page, res *Result) *Failure {
	selector := r.opts.Selectors.Message
	waitCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var last browser.ElementState
	var probeErr error
	err := retry.Do(waitCtx, retry.NewConstant(r.opts.PollInterval), func(ctx context.Context) error {
		state, err := page.Probe(ctx, selector)
		if err != nil {
			probeErr = err
			return retry.RetryableError(err)
		}

		last = state
		if state.Visible && strings.Contains(state.Text, r.opts.ExpectedText) {
			return nil
		}

		return retry.RetryableError(errNotReady)
	})

	res.MessageText = last.Text
	if err == nil {
		logrus.WithField("text", last.Text).Info("message visible")
		return nil
	}

	if last.Visible {
		return &Failure{
			Kind:   KindMismatch,
			Step:   "wait for message",
			Detail: fmt.Sprintf("expected %s to contain %q, got %q", selector, r.opts.ExpectedText, last.Text),
		}
	}

	if probeErr == nil {
		probeErr = context.DeadlineExceeded
	}

	state := "not visible"
	if !last.Found {
		state = "not found"
	}

	return &Failure{
		Kind:   KindTimeout,
		Step:   "wait for message",
		Detail: fmt.Sprintf("%s %s after %s", selector, state, r.opts.Timeout),
		Err:    probeErr,
	}
}

// act runs fn bounded by the action timeout
func (r *Runner) act(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ActionTimeout)
	defer cancel()

	return fn(ctx)
}

// capture writes a screenshot of page to path and records it on res.
// It still runs after ctx is canceled so an interrupted run leaves a picture behind.
func (r *Runner) capture(ctx context.Context, page browser.Page, path string, res *Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.ActionTimeout)
	defer cancel()

	log := logrus.WithField("path", path)

	data, err := page.Screenshot(ctx)
	if err != nil {
		log.WithError(err).Error("could not capture screenshot")
		return err
	}

	if err := r.writeFile(path, data); err != nil {
		log.WithError(err).Error("could not write screenshot")
		return err
	}

	res.Screenshot = path
	log.Info("screenshot saved")
	return nil
}

// removeArtifacts deletes screenshots left behind by a previous run
func (r *Runner) removeArtifacts() {
	for _, path := range []string{r.opts.SuccessPath, r.opts.ErrorPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", path).Warn("could not remove old screenshot")
		}
	}
}
