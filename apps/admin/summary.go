package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

// summary prints the per-course and overall attendance totals of a student.
func (cli *commandLine) summary(student string) error {
	ctx := context.Background()
	acc, err := cli.accRepo.GetAccount(ctx, account.GetFilter{ID: student})
	if errors.Cause(err) == account.ErrNotFound {
		acc, err = cli.accRepo.GetAccount(ctx, account.GetFilter{UsernameOrEmail: []string{core.CleanString(student, true /* lower */)}})
	}
	if err != nil {
		return err
	}
	d, err := cli.courseSvc.Dashboard(ctx, acc.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s (version %d)\n", acc.Name, d.Version)
	fmt.Fprintln(w, "COURSE\tSTATE\tSIMULATION\tGROUND\tROAD\tTOTAL")
	for _, c := range d.Courses {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", c.VehicleType, c.State, c.Summary.Simulation, c.Summary.Ground, c.Summary.Road, c.Summary.Total)
	}
	fmt.Fprintf(w, "all\t\t%d\t%d\t%d\t%d\n", d.Total.Simulation, d.Total.Ground, d.Total.Road, d.Total.Total)
	return w.Flush()
}
