package main

import (
	"context"
	"fmt"

	"github.com/nexusalpri/academy/core/user"
)

func (cli *commandLine) addUser(name, email, pwd, role string) error {
	nu := user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	}
	if nu.Name == "" {
		nu.Name = email
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
