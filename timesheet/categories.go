// Package timesheet carries the payroll-facing domain around the prorate
// engine: the earning categories both timesheet systems understand, the
// free-text category normalizer, the project code book, and the report
// builder that pivots raw time entries into a ledger grid.
package timesheet

import "github.com/tidewater/timesheet-engine/prorate"

// =============================================================================
// EARNING CATEGORIES
// =============================================================================

// The earning categories recognized by the payroll systems. CategoryRegular
// is the baseline: virtual REGULAR hours are folded into the targets' own
// entries, every other category gets rows of its own.
const (
	CategoryRegular       prorate.EarningCategory = "REGULAR"
	CategoryLWOP          prorate.EarningCategory = "LWOP"
	CategoryMaternity     prorate.EarningCategory = "MATERNITY"
	CategoryAdminLeave    prorate.EarningCategory = "ADMIN LEAVE"
	CategoryParental      prorate.EarningCategory = "PARENTAL LEAVE"
	CategoryCompensation  prorate.EarningCategory = "Compensation"
	CategoryFurlough      prorate.EarningCategory = "FURLOUGH"
	CategoryPublicHoliday prorate.EarningCategory = "PUBLIC HOLIDAY"
	CategoryMedicalLeave  prorate.EarningCategory = "Medical Leave"
	CategoryPersonalLeave prorate.EarningCategory = "Personal Leave Day"
	CategorySick          prorate.EarningCategory = "SICK"
	CategoryVacation      prorate.EarningCategory = "VACATION"
)

// categories lists every known category in keyword-match priority order.
// The normalizer scans this order, so longer/more specific labels must
// come before any shorter label they contain.
var categories = []prorate.EarningCategory{
	CategoryRegular,
	CategoryLWOP,
	CategoryMaternity,
	CategoryAdminLeave,
	CategoryParental,
	CategoryCompensation,
	CategoryFurlough,
	CategoryPublicHoliday,
	CategoryMedicalLeave,
	CategoryPersonalLeave,
	CategorySick,
	CategoryVacation,
}

// payrollCodes maps each category to the earning code the timesheet
// system's entry form expects.
var payrollCodes = map[prorate.EarningCategory]string{
	CategoryRegular:       "1",
	CategoryLWOP:          "17",
	CategoryMaternity:     "301",
	CategoryAdminLeave:    "6",
	CategoryParental:      "69",
	CategoryCompensation:  "C",
	CategoryFurlough:      "FRL",
	CategoryPublicHoliday: "H",
	CategoryMedicalLeave:  "ML",
	CategoryPersonalLeave: "PLD",
	CategorySick:          "S",
	CategoryVacation:      "V",
}

// Categories returns every known earning category, in priority order.
func Categories() []prorate.EarningCategory {
	out := make([]prorate.EarningCategory, len(categories))
	copy(out, categories)
	return out
}

// PayrollCode returns the earning code submitted to the timesheet system
// for a category. Unknown categories return ok=false.
func PayrollCode(c prorate.EarningCategory) (string, bool) {
	code, ok := payrollCodes[c]
	return code, ok
}

// IsKnown reports whether the category is one the payroll systems accept.
func IsKnown(c prorate.EarningCategory) bool {
	_, ok := payrollCodes[c]
	return ok
}
