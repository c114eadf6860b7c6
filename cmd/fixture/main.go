package main

import (
	"flag"
	"net/http"
	"os"
	"registration-verifier/internal/fixture"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 30

// Version is the fixture version
var Version = "v0.0.0-dev"

var (
	addr          = flag.String("addr", ":8000", "the listen address")
	mode          = flag.String("mode", string(fixture.ModePartial), "how registrations are answered (partial, success, silent)")
	delay         = flag.Duration("delay", time.Second, "how long a registration takes to answer")
	disableAccess = flag.Bool("quiet", false, "disable access logs")
)

func main() {
	flag.Parse()
	setupLogger()

	m, err := fixture.ParseMode(*mode)
	if err != nil {
		logrus.WithError(err).Fatal("invalid mode")
	}

	server, err := fixture.NewServer(m, *delay, Version)
	if err != nil {
		logrus.WithError(err).Fatal("could not create server")
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(server)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithFields(logrus.Fields{
		"addr": srv.Addr,
		"mode": m,
		"page": fixture.RegisterPath,
	}).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(next http.Handler) http.Handler {
	if *disableAccess {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
