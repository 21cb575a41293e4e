package payroll

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
)

func TestNewStatement(t *testing.T) {
	teacher := employee.Employee{
		ID:              "t1",
		Code:            "T-2409-0001",
		FirstName:       "Rahim",
		LastName:        "Uddin",
		Email:           "rahim@test.com",
		Type:            employee.TypeTeacher,
		PaymentMethod:   employee.PaymentPerClass,
		PaymentPerClass: []employee.ClassPayment{rate(100, "6"), rate(150, "9")},
	}
	records := []classcount.Record{
		{EmployeeID: "t1", Date: day(4), Classes: []classcount.ClassEntry{entry(3, "6"), entry(2, "9")}},
		{EmployeeID: "t1", Date: day(5), Classes: []classcount.ClassEntry{entry(1, "6")}},
	}
	summary := Summarize(teacher, records)

	// a rate edited after the computation does not leak into the statement
	teacher.PaymentPerClass[0].Amount = decimal.NewFromInt(999)

	st := NewStatement(summary, day(1))
	assert.Equal(t, "Rahim Uddin", st.FullName)
	assert.Equal(t, "March 2024", st.Month)
	assert.Equal(t, "700.00", st.Total)
	assert.Equal(t, []StatementLine{
		{Band: "3-8", Count: 4, Rate: "100.00", Income: "400.00"},
		{Band: "9-10", Count: 2, Rate: "150.00", Income: "300.00"},
		{Band: "11-12", Count: 0, Rate: "0.00", Income: "0.00"},
	}, st.Lines)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, st.WriteCSV(&buf))
		assert.Equal(t, "date,3-8,9-10,11-12\n2024-03-04,3,2,0\n2024-03-05,1,0,0\n", buf.String())
	})

	t.Run("email", func(t *testing.T) {
		msg, err := st.EmailMessage()
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "rahim@test.com", msg.To[0].Address)
		assert.Equal(t, "Rahim Uddin", msg.To[0].Name)
		assert.Equal(t, "Class count statement for March 2024", msg.Subject)
		if assert.Len(t, msg.Attachments, 1) {
			assert.Equal(t, "class-count-T-2409-0001.csv", msg.Attachments[0].Filename)
		}
	})

	t.Run("no email address", func(t *testing.T) {
		teacher.Email = ""
		msg, err := NewStatement(Summarize(teacher, records), day(1)).EmailMessage()
		assert.NoError(t, err)
		assert.Nil(t, msg)
	})
}
