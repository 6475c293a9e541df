// Command ics-lint parses and validates iCalendar files and reports
// every finding. It exits non-zero when a file fails to parse or any
// error-severity finding is present.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/icskit/ical"
)

var warningsAsErrors = flag.Bool("strict", false, "treat warnings as errors")

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-strict] file.ics ...\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if !lint(path) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func lint(path string) bool {
	log := logrus.WithField("file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(errors.Wrap(err, "read calendar")).Error("cannot read file")
		return false
	}

	cal, err := ical.ParseText(string(data))
	if err != nil {
		log.WithError(err).Error("parse failed")
		return false
	}

	ok := true
	for _, finding := range cal.Validate() {
		entry := log.WithFields(logrus.Fields{
			"component": finding.Component,
			"property":  finding.Property,
		})

		switch finding.Severity {
		case ical.SeverityWarning:
			entry.Warn(finding.Error())
			if *warningsAsErrors {
				ok = false
			}
		default:
			entry.Error(finding.Error())
			ok = false
		}
	}

	if ok {
		log.WithFields(logrus.Fields{
			"components": len(cal.Components),
			"prodid":     cal.ProdID,
		}).Info("calendar is structurally sound")
	}
	return ok
}
