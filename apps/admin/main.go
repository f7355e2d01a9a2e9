package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
	"github.com/igortacu/summer-hackathon-sub000/storage/database"
	sqlxrepos "github.com/igortacu/summer-hackathon-sub000/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB
	ctx := context.Background()
	errAndDie(database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(ctx, conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db.DB,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db), validate),
		actSvc: activity.NewService(sqlxrepos.NewActivityRepository(db), activity.OptionsFromConfig(conf.Activity)),
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
