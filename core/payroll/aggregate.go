package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
)

type (
	// DailyCount is the number of classes per band a teacher taught on a day.
	DailyCount struct {
		Date       time.Time  `json:"date"`
		ClassCount BandCounts `json:"class_count"`
	}

	// TeacherSummary is the monthly class count and income of a per class teacher.
	TeacherSummary struct {
		EmployeeID        string       `json:"employee_id"`
		ShortName         string       `json:"short_name"`
		FullName          string       `json:"full_name"`
		ClassCountDetails []DailyCount `json:"class_count_details"`
		MonthTotals       BandCounts   `json:"month_totals"`
		MonthIncome       BandAmounts  `json:"month_income"`

		// directory entry the summary was computed from
		Code  string      `json:"-"`
		Email string      `json:"-"`
		Rates BandAmounts `json:"-"`
	}
)

// RatesOf resolves the per band rates of rows. Rows are applied in order, so when several
// rows cover the same band the last one wins. Bands no row covers are paid 0.
func RatesOf(rows []employee.ClassPayment) BandAmounts {
	var rates BandAmounts
	for _, row := range rows {
		for _, ref := range row.Classes {
			if b, ok := bandOfRef(ref); ok {
				rates.set(b, row.Amount)
			}
		}
	}
	rates.Total = decimal.Zero
	return rates
}

// CountRecord counts the classes of a daily record per band.
// A band is credited at most once from the class entries, with the count of the first entry
// reaching it. Every proxy class adds one to its band.
func CountRecord(r classcount.Record) BandCounts {
	var counts BandCounts

	credited := make(map[Band]bool, len(Bands))
	for _, entry := range r.Classes {
		for _, ref := range entry.Classes {
			b, ok := bandOfRef(ref)
			if !ok || credited[b] {
				continue
			}
			counts.Add(b, entry.Count)
			credited[b] = true
		}
	}

	for _, proxy := range r.ProxyClasses {
		if b, ok := bandOfRef(proxy.Class); ok {
			counts.Add(b, 1)
		}
	}
	return counts
}

// Income multiplies totals by rates, band by band.
func Income(totals BandCounts, rates BandAmounts) BandAmounts {
	var income BandAmounts
	for _, b := range Bands {
		income.set(b, decimal.NewFromInt(int64(totals.Get(b))).Mul(rates.Get(b)))
	}
	return income
}

// Summarize builds the summary of teacher from their own records, in date order.
func Summarize(teacher employee.Employee, records []classcount.Record) TeacherSummary {
	summary := TeacherSummary{
		EmployeeID:        teacher.ID,
		ShortName:         teacher.ShortName,
		FullName:          teacher.FullName(),
		ClassCountDetails: make([]DailyCount, 0, len(records)),
		Code:              teacher.Code,
		Email:             teacher.Email,
		Rates:             RatesOf(teacher.PaymentPerClass),
	}
	for _, r := range records {
		counts := CountRecord(r)
		summary.ClassCountDetails = append(summary.ClassCountDetails, DailyCount{Date: r.Date, ClassCount: counts})
		summary.MonthTotals.Merge(counts)
	}
	summary.MonthIncome = Income(summary.MonthTotals, summary.Rates)
	return summary
}

// Aggregate summarizes every teacher, in the given order, over records.
// Records of employees not in teachers are ignored.
func Aggregate(teachers []employee.Employee, records []classcount.Record) []TeacherSummary {
	byTeacher := make(map[string][]classcount.Record, len(teachers))
	for _, r := range records {
		byTeacher[r.EmployeeID] = append(byTeacher[r.EmployeeID], r)
	}

	summaries := make([]TeacherSummary, 0, len(teachers))
	for _, t := range teachers {
		recs := byTeacher[t.ID]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
		summaries = append(summaries, Summarize(t, recs))
	}
	return summaries
}
