package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"time"

	"github.com/trezcool/tuition/core"
)

const statementTemplate = "payroll_statement"

type (
	StatementLine struct {
		Band   string
		Count  int
		Rate   string
		Income string
	}

	// Statement is the printable monthly payroll of a teacher.
	Statement struct {
		FullName string
		Month    string
		Lines    []StatementLine
		Total    string
		summary  TeacherSummary
	}
)

// NewStatement prices summary with the rates it was computed with.
func NewStatement(summary TeacherSummary, month time.Time) Statement {
	st := Statement{
		FullName: summary.FullName,
		Month:    month.Format("January 2006"),
		Total:    summary.MonthIncome.Total.StringFixed(2),
		summary:  summary,
	}
	for _, b := range Bands {
		st.Lines = append(st.Lines, StatementLine{
			Band:   b.String(),
			Count:  summary.MonthTotals.Get(b),
			Rate:   summary.Rates.Get(b).StringFixed(2),
			Income: summary.MonthIncome.Get(b).StringFixed(2),
		})
	}
	return st
}

// WriteCSV writes the daily details of the statement.
func (st Statement) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"date"}
	for _, b := range Bands {
		header = append(header, b.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range st.summary.ClassCountDetails {
		row := []string{d.Date.Format("2006-01-02")}
		for _, b := range Bands {
			row = append(row, strconv.Itoa(d.ClassCount.Get(b)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EmailMessage builds the statement mail; nil if the teacher has no email address.
func (st Statement) EmailMessage() (*core.EmailMessage, error) {
	if st.summary.Email == "" {
		return nil, nil
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: st.FullName, Address: st.summary.Email}},
		Subject:      fmt.Sprintf("Class count statement for %s", st.Month),
		TemplateName: statementTemplate,
		TemplateData: st,
	}
	var buf bytes.Buffer
	if err := st.WriteCSV(&buf); err != nil {
		return nil, err
	}
	if err := msg.Attach(&buf, "class-count-"+st.summary.Code+".csv", "text/csv"); err != nil {
		return nil, err
	}
	return msg, nil
}
