package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	usrSvc *user.Service
	actSvc *activity.Service
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo|status|version - manage the database schema")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role ROLE] [-group GROUP] - create or update a user; the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password; the password is prompted")
	fmt.Fprintln(cli.out, "  seedactivity -email EMAIL [-seed SEED] - replace the user's last year of activity with random data")
	fmt.Fprintln(cli.out, "  importgit -email EMAIL -file PATH [-any-author] - import a `git log --stat --pretty=fuller` dump")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "One of student, mentor or admin.")
	addUserGroup := addUserCmd.String("group", "", "The user's PBL group.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	seedActivityCmd := flag.NewFlagSet("seedactivity", flag.ContinueOnError)
	seedActivityEmail := seedActivityCmd.String("email", "", "The user's email.")
	seedActivitySeed := seedActivityCmd.Int64("seed", 0, "Random seed; 0 picks one from the clock.")

	importGitCmd := flag.NewFlagSet("importgit", flag.ContinueOnError)
	importGitEmail := importGitCmd.String("email", "", "The user's email.")
	importGitFile := importGitCmd.String("file", "", "Path to the git log output.")
	importGitAnyAuthor := importGitCmd.Bool("any-author", false, "Count every commit, not only the user's.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, seedActivityCmd, importGitCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole, *addUserGroup, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "seedactivity":
		if err := seedActivityCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedActivityEmail == "" {
			seedActivityCmd.Usage()
			return errHelp
		}
		return cli.seedActivity(*seedActivityEmail, *seedActivitySeed)

	case "importgit":
		if err := importGitCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importGitEmail == "" || *importGitFile == "" {
			importGitCmd.Usage()
			return errHelp
		}
		return cli.importGit(*importGitEmail, *importGitFile, *importGitAnyAuthor)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}
