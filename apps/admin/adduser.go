package main

import (
	"context"
	"time"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/user"
)

type newUserArgs struct {
	name, uname, email, pwd string
	isAdmin                 bool
	employeeID              string
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(args newUserArgs) error {
	ctx := context.Background()
	uname := core.CleanString(args.uname, true /* lower */)
	email := core.CleanString(args.email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email})
	}
	exists := err == nil
	if err != nil && err != user.ErrNotFound {
		return err
	}
	if !exists {
		now := time.Now().UTC()
		usr = user.User{
			Username:  uname,
			Email:     email,
			Roles:     user.TeacherRoles,
			CreatedAt: now,
		}
	}
	if args.name != "" {
		usr.Name = core.CleanString(args.name)
	}
	if args.isAdmin {
		usr.Roles = user.AllRoles
	}
	if args.employeeID != "" {
		if _, err := cli.employees.GetByID(ctx, args.employeeID); err != nil {
			return err
		}
		usr.EmployeeID = args.employeeID
	}
	usr.SetActive(true)

	if err := user.ValidatePassword(args.pwd, usr); err != nil {
		return err
	}
	if err := usr.SetPassword(args.pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
