package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"registration-verifier/pkg/db"
	"registration-verifier/pkg/model"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

var (
	command = flag.String("c", "runs", "specifies the command (runs)")
	limit   = flag.Int("n", model.DefaultListLimit, "the number of runs to show")
)

func main() {
	flag.Parse()

	switch *command {
	case "runs":
		if !db.Enabled() {
			logrus.Fatal("no database configured, set SMOKE_PG_DSN")
		}

		runs, err := model.ListRuns(context.Background(), *limit)
		if err != nil {
			logrus.WithError(err).Fatal("could not list runs")
		}

		if err := printRuns(os.Stdout, runs); err != nil {
			logrus.WithError(err).Fatal("could not print runs")
		}

	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func printRuns(out io.Writer, runs []*model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Started", "Outcome", "Duration", "Email", "Detail")

	for _, run := range runs {
		row := []string{
			run.Started.Local().Format(time.RFC3339),
			run.Outcome,
			run.Duration().Round(time.Millisecond).String(),
			run.Email,
			run.Detail,
		}

		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}
