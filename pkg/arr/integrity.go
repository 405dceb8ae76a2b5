package arr

import (
	"fmt"

	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/mathutil"
)

// VerifyIntegrity re-checks the conservation and chaining identities on
// computed tables and returns a description of each violation found. A nil
// result means the tables are internally consistent.
func VerifyIntegrity(annual []AnnualRow, quarterly []QuarterRow) []string {
	var problems []string

	for _, row := range annual {
		residual := row.BeginningARR + row.NewLogoBookings + row.ExpansionBookings + row.ChurnDownsell - row.EndingARR
		if !mathutil.IsZero(residual) {
			problems = append(problems,
				fmt.Sprintf("year %d: ARR waterfall does not balance (residual %.2f)", row.Year, residual))
		}
	}
	for i := 1; i < len(annual); i++ {
		if !mathutil.IsZero(annual[i].BeginningARR - annual[i-1].EndingARR) {
			problems = append(problems,
				fmt.Sprintf("year %d: beginning ARR does not match prior year's ending ARR", annual[i].Year))
		}
	}

	for i, row := range quarterly {
		residual := row.BeginningARR + row.NewLogoBookings + row.ExpansionBookings + row.ChurnDownsell - row.EndingARR
		if !mathutil.IsZero(residual) {
			problems = append(problems,
				fmt.Sprintf("quarter %s: ARR waterfall does not balance (residual %.2f)",
					row.Date.Format(constants.DateTimeLayout), residual))
		}
		if i > 0 && !mathutil.IsZero(row.BeginningARR-quarterly[i-1].EndingARR) {
			problems = append(problems,
				fmt.Sprintf("quarter %s: beginning ARR does not match prior quarter's ending ARR",
					row.Date.Format(constants.DateTimeLayout)))
		}
	}

	if len(annual) > 0 && len(quarterly) > 0 {
		if !mathutil.IsZero(quarterly[0].BeginningARR - annual[0].EndingARR) {
			problems = append(problems, "first quarter beginning ARR does not match the starting position")
		}
	}
	return problems
}
