package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/igortacu/summer-hackathon-sub000/storage/database/migrations"
)

type (
	migrateFunc        func(db *sql.DB, fsys fs.FS, dir string) error
	migrateVersionFunc func(db *sql.DB, fsys fs.FS, dir string, version int64) error
)

// mockable
var (
	gooseCommands = map[string]migrateFunc{
		"up":        goose.Up,
		"up-by-one": goose.UpByOne,
		"down":      goose.Down,
		"redo":      goose.Redo,
	}
	gooseVersionCommands = map[string]migrateVersionFunc{
		"up-to":   goose.UpTo,
		"down-to": goose.DownTo,
	}
	gooseDBVersionFunc = goose.GetDBVersion
)

func (cli *commandLine) migrate(args []string) error {
	command := args[0]

	if run, ok := gooseCommands[command]; ok {
		return run(cli.db, migrations.FS, migrations.Dir)
	}

	if run, ok := gooseVersionCommands[command]; ok {
		if len(args) < 2 {
			return errors.Errorf("%s must be of form: migrate %s VERSION", command, command)
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errors.Errorf("version must be a number (got '%s')", args[1])
		}
		return run(cli.db, migrations.FS, migrations.Dir, version)
	}

	switch command {
	case "status", "version":
		version, err := gooseDBVersionFunc(cli.db)
		if err != nil {
			return errors.Wrap(err, "reading database version")
		}
		fmt.Fprintf(cli.out, "database version: %d\n", version)
		return nil
	}
	return errors.Errorf("%q: no such command", command)
}
