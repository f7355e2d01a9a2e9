package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core/gitlog"
)

// importGit loads a saved `git log --stat --pretty=fuller` dump into the user's activity.
// Unless anyAuthor is set only the commits authored with the user's email count.
func (cli *commandLine) importGit(email, path string, anyAuthor bool) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening git log")
	}
	defer func() { _ = f.Close() }()

	commits, err := gitlog.Parse(f)
	if err != nil {
		return errors.Wrap(err, "parsing git log")
	}

	var emails []string
	if !anyAuthor {
		emails = append(emails, usr.Email)
	}
	samples := gitlog.DailySamples(commits, cli.conf.Activity.Location(), emails...)
	days, err := cli.actSvc.Import(ctx, usr.ID, samples)
	if err != nil {
		return errors.Wrap(err, "importing activity")
	}
	fmt.Fprintf(cli.out, "imported %d commits over %d days for %s\n", len(commits), days, usr.Email)
	return nil
}
