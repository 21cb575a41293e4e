package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/payroll"
)

const monthLayout = "2006-01"

var errInvalidMonth = errors.New("month must be formatted as YYYY-MM")

// payroll prints the payroll of month, and mails every teacher their statement when mail is set.
func (cli *commandLine) payroll(month string, mail bool) error {
	ctx := context.Background()
	loc := cli.payrollSvc.Location()

	ref, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil {
		return errInvalidMonth
	}

	summaries, err := cli.payrollSvc.ComputeMonthly(ctx, ref)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintf(tw, "teacher\tdays\t3-8\t9-10\t11-12\tincome\t\n")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t\n",
			s.FullName, len(s.ClassCountDetails),
			s.MonthTotals.Lower, s.MonthTotals.Middle, s.MonthTotals.Upper,
			s.MonthIncome.Total.StringFixed(2),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !mail {
		return nil
	}
	queued, err := mailStatements(cli.mailer, ref, summaries)
	if err != nil {
		return err
	}
	delivered := cli.mailer.Wait()
	fmt.Fprintf(cli.out, "%d statement(s) sent\n", delivered)
	if delivered < queued {
		return errors.Errorf("%d of %d statement(s) could not be delivered", queued-delivered, queued)
	}
	return nil
}

// mailStatements queues the statement of every summarized teacher with an email address.
func mailStatements(mailer core.EmailService, ref time.Time, summaries []payroll.TeacherSummary) (int, error) {
	var messages []*core.EmailMessage
	for _, s := range summaries {
		msg, err := payroll.NewStatement(s, ref).EmailMessage()
		if err != nil {
			return 0, errors.Wrapf(err, "building statement of %s", s.Code)
		}
		if msg != nil {
			messages = append(messages, msg)
		}
	}

	mailer.SendMessages(messages...)
	return len(messages), nil
}
