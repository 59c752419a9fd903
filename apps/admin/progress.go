package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) enroll(userID, courseID string) error {
	ctx := context.Background()
	if _, err := cli.usrSvc.GetByID(ctx, userID); err != nil {
		return err
	}
	enr, err := cli.enrollments.Enroll(ctx, userID, courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "enrollment %s\n", enr.ID)
	return nil
}

func (cli *commandLine) consolidate(userID, courseID string) error {
	rec, err := cli.progressSvc.ConsolidateProgress(context.Background(), userID, courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "progress: %.2f%%\n", rec.ProgressPercentage)
	return nil
}
