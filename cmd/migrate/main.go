package main

import (
	"context"
	"registration-verifier/pkg/db"
	"time"

	"github.com/sirupsen/logrus"
)

const waitTimeout = time.Second * 10

func main() {
	if err := db.WaitForInstance(context.Background(), waitTimeout); err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}

	if err := db.Migrate(); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}
}
