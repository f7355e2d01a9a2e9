package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, role, group, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            role,
			PBLGroup:        group,
		})
		if err != nil {
			return errors.Wrap(err, "creating user")
		}
		fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
		return nil
	}

	isActive := true
	usr, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		Name:            name,
		Role:            role,
		PBLGroup:        group,
		IsActive:        &isActive,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	fmt.Fprintf(cli.out, "updated %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
