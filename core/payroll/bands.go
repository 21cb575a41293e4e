package payroll

import "github.com/shopspring/decimal"

// Band is a pay band: a contiguous range of class numerals paid at the same rate.
type Band int

const (
	BandLower  Band = iota // classes 3 to 8
	BandMiddle             // classes 9 and 10
	BandUpper              // classes 11 and 12
)

var Bands = []Band{BandLower, BandMiddle, BandUpper}

func (b Band) String() string {
	switch b {
	case BandLower:
		return "3-8"
	case BandMiddle:
		return "9-10"
	case BandUpper:
		return "11-12"
	}
	return ""
}

// BandOf maps a class numeral to its band; numerals outside 3-12 have none.
func BandOf(numeral int) (Band, bool) {
	switch {
	case numeral >= 3 && numeral <= 8:
		return BandLower, true
	case numeral >= 9 && numeral <= 10:
		return BandMiddle, true
	case numeral >= 11 && numeral <= 12:
		return BandUpper, true
	}
	return 0, false
}

// numeraled is anything carrying a class numeral, e.g. class.Ref.
type numeraled interface {
	Numeral() (int, bool)
}

func bandOfRef(ref numeraled) (Band, bool) {
	n, ok := ref.Numeral()
	if !ok {
		return 0, false
	}
	return BandOf(n)
}

// BandCounts holds a number of classes per band.
type BandCounts struct {
	Lower  int `json:"3-8"`
	Middle int `json:"9-10"`
	Upper  int `json:"11-12"`
}

func (bc *BandCounts) ptr(b Band) *int {
	switch b {
	case BandMiddle:
		return &bc.Middle
	case BandUpper:
		return &bc.Upper
	}
	return &bc.Lower
}

func (bc BandCounts) Get(b Band) int { return *bc.ptr(b) }

func (bc *BandCounts) Add(b Band, n int) { *bc.ptr(b) += n }

// Merge adds every band of other to bc.
func (bc *BandCounts) Merge(other BandCounts) {
	for _, b := range Bands {
		bc.Add(b, other.Get(b))
	}
}

// BandAmounts holds money per band, plus their sum.
type BandAmounts struct {
	Lower  decimal.Decimal `json:"3-8"`
	Middle decimal.Decimal `json:"9-10"`
	Upper  decimal.Decimal `json:"11-12"`
	Total  decimal.Decimal `json:"total"`
}

func (ba BandAmounts) Get(b Band) decimal.Decimal {
	switch b {
	case BandMiddle:
		return ba.Middle
	case BandUpper:
		return ba.Upper
	}
	return ba.Lower
}

func (ba *BandAmounts) set(b Band, d decimal.Decimal) {
	switch b {
	case BandLower:
		ba.Lower = d
	case BandMiddle:
		ba.Middle = d
	case BandUpper:
		ba.Upper = d
	}
	ba.Total = ba.Lower.Add(ba.Middle).Add(ba.Upper)
}
