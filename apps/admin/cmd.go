package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/user"
	"github.com/nexusalpri/academy/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword      // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errHelp      = errors.New("help provided")
	errNoSQLDB   = errors.New("migrations require a SQL database engine")
	errNoPwdRead = errors.New("no password provided")
)

type commandLine struct {
	db          *sql.DB
	usrSvc      *user.Service
	enrollments progress.EnrollmentRegistry
	progressSvc *progress.Service
	validate    *validator.Validate
	out         io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Academy administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	migrateCmd := &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, ...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}

	var name, email, role string
	addUserCmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user; the password is prompted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				return errNoPwdRead
			}
			return cli.addUser(name, email, string(pwd), role)
		},
	}
	addUserCmd.Flags().StringVar(&name, "name", "", "The user's full name")
	addUserCmd.Flags().StringVar(&email, "email", "", "The user's email")
	addUserCmd.Flags().StringVar(&role, "role", user.RoleStudent, "One of ADMINISTRATOR, INSTRUCTOR, STUDENT")
	_ = addUserCmd.MarkFlagRequired("email")

	var userID, courseID string
	enrollCmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a user in a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.enroll(userID, courseID)
		},
	}
	consolidateCmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Recompute & save a user's completion percentage of a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.consolidate(userID, courseID)
		},
	}
	for _, cmd := range []*cobra.Command{enrollCmd, consolidateCmd} {
		cmd.Flags().StringVar(&userID, "user", "", "The user's ID")
		cmd.Flags().StringVar(&courseID, "course", "", "The course's ID")
		_ = cmd.MarkFlagRequired("user")
		_ = cmd.MarkFlagRequired("course")
	}

	root.AddCommand(migrateCmd, addUserCmd, enrollCmd, consolidateCmd)
	return root
}

// run executes the command line args, program name included.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}
