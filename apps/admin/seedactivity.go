package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var seedFunc = func() int64 { return time.Now().UnixNano() } // mockable

func (cli *commandLine) seedActivity(email string, seed int64) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = seedFunc()
	}

	days, err := cli.actSvc.SeedDemo(ctx, usr.ID, seed)
	if err != nil {
		return errors.Wrap(err, "seeding activity")
	}
	fmt.Fprintf(cli.out, "seeded %d active days for %s (seed %d)\n", days, usr.Email, seed)
	return nil
}
