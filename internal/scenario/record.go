package scenario

import (
	"context"
	"registration-verifier/pkg/db"
	"registration-verifier/pkg/model"

	"github.com/sirupsen/logrus"
)

// Run converts the result into a history record
func (r *Result) Run() *model.Run {
	run := &model.Run{
		Email:          r.Email,
		Outcome:        string(r.Kind()),
		MessageText:    r.MessageText,
		ScreenshotPath: r.Screenshot,
		Started:        r.Started,
		Finished:       r.Finished,
	}

	if r.Failure != nil {
		run.Step = r.Failure.Step
		run.Detail = r.Failure.Detail
		if r.Failure.Err != nil {
			if run.Detail != "" {
				run.Detail += ": "
			}
			run.Detail += r.Failure.Err.Error()
		}
	}

	return run
}

// Record saves the result to the run history when a database is configured.
// A failure to record is logged and does not change the outcome of the run.
func Record(ctx context.Context, res *Result) {
	if !db.Enabled() {
		return
	}

	log := logrus.WithField("outcome", res.Kind())
	if err := db.LoadInstance(ctx); err != nil {
		log.WithError(err).Warn("could not connect to run history")
		return
	}

	run := res.Run()
	if err := run.Save(ctx); err != nil {
		log.WithError(err).Warn("could not record run")
		return
	}

	log.WithField("id", run.ID).Debug("run recorded")
}
