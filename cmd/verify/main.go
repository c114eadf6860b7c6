package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"registration-verifier/internal/account"
	"registration-verifier/internal/browser"
	"registration-verifier/internal/config"
	"registration-verifier/internal/scenario"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const recordTimeout = time.Second * 5

var (
	configFile = flag.String("config", "", "the configuration file (defaults to $SMOKE_CONFIG_FILE or config.yaml)")
	headed     = flag.Bool("headed", false, "show the browser window")
	timeout    = flag.Duration("timeout", 0, "how long to wait for the message, overrides the configuration")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *configFile != "" {
		_ = os.Setenv("SMOKE_CONFIG_FILE", *configFile)
	}

	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}

	cfg := config.Instance()
	if *headed {
		cfg.Browser.Headless = false
	}

	if *timeout > 0 {
		cfg.Timeout = *timeout
	}

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launcher := browser.NewRodLauncher(browser.RodOptions{
		Headless:   cfg.Browser.Headless,
		NoSandbox:  cfg.Browser.NoSandbox,
		Bin:        cfg.Browser.Bin,
		ControlURL: cfg.Browser.ControlURL,
	})
	accounts := account.NewGenerator(cfg.Account.EmailPrefix, cfg.Account.EmailDomain, cfg.Account.Password)
	runner := scenario.NewRunner(launcher, accounts, scenario.OptionsFromConfig(cfg))

	res := runner.Run(ctx)

	log := logrus.WithFields(logrus.Fields{
		"outcome":    res.Kind(),
		"email":      res.Email,
		"screenshot": res.Screenshot,
		"duration":   res.Duration().String(),
	})
	if res.Passed() {
		log.Info("verification passed")
	} else {
		log.WithError(res.Err()).Error("verification failed")
	}

	recordCtx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	scenario.Record(recordCtx, res)
	cancel()

	fmt.Println(res.Summary())
	return res.Kind().ExitCode()
}

func setupLogger(cfg config.Config) {
	if lvl := cfg.Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
}
