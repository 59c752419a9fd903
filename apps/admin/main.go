package main

import (
	"database/sql"
	"errors"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/dig"

	dig_container "github.com/nexusalpri/academy/apps/api/di/dig"
	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/user"
)

type cliParams struct {
	dig.In
	DB          *sql.DB
	UsrSvc      *user.Service
	Enrollments progress.EnrollmentRegistry
	ProgressSvc *progress.Service
	Validate    *validator.Validate
}

func main() {
	logger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	err := dig_container.New().Invoke(func(p cliParams) error {
		if p.DB != nil {
			defer func() { _ = p.DB.Close() }()
		}

		cli := commandLine{
			db:          p.DB,
			usrSvc:      p.UsrSvc,
			enrollments: p.Enrollments,
			progressSvc: p.ProgressSvc,
			validate:    p.Validate,
			out:         os.Stdout,
		}
		return cli.run(os.Args)
	})
	if err != nil {
		if !errors.Is(err, errHelp) {
			logger.Printf("error: %v\n", err)
		}
		os.Exit(1)
	}
}
