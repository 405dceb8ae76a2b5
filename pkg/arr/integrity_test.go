package arr

import (
	"strings"
	"testing"
)

func TestVerifyIntegrityCleanTables(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	if problems := VerifyIntegrity(annual, quarterly); len(problems) != 0 {
		t.Errorf("VerifyIntegrity() on computed tables reported %d problems: %v", len(problems), problems)
	}
}

func TestVerifyIntegrityDetectsUnbalancedYear(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	annual[2].EndingARR += 5

	problems := VerifyIntegrity(annual, quarterly)
	if len(problems) == 0 {
		t.Fatal("VerifyIntegrity() missed a tampered annual row")
	}

	found := false
	for _, problem := range problems {
		if strings.Contains(problem, "year 2") {
			found = true
		}
	}
	if !found {
		t.Errorf("VerifyIntegrity() problems do not mention year 2: %v", problems)
	}
}

func TestVerifyIntegrityDetectsBrokenQuarterChain(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	quarterly[7].BeginningARR += 1

	problems := VerifyIntegrity(annual, quarterly)
	if len(problems) == 0 {
		t.Fatal("VerifyIntegrity() missed a broken quarterly chain")
	}

	found := false
	for _, problem := range problems {
		if strings.Contains(problem, "does not match prior quarter") {
			found = true
		}
	}
	if !found {
		t.Errorf("VerifyIntegrity() problems do not mention the broken chain: %v", problems)
	}
}

func TestVerifyIntegrityDetectsMismatchedStart(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	// Shift the whole first year so the starting-position check fires
	quarterly[0].BeginningARR += 100
	quarterly[0].EndingARR += 100
	quarterly[1].BeginningARR += 100
	quarterly[1].EndingARR += 100
	quarterly[2].BeginningARR += 100
	quarterly[2].EndingARR += 100
	quarterly[3].BeginningARR += 100
	quarterly[3].EndingARR += 100

	problems := VerifyIntegrity(annual, quarterly)
	found := false
	for _, problem := range problems {
		if strings.Contains(problem, "starting position") {
			found = true
		}
	}
	if !found {
		t.Errorf("VerifyIntegrity() did not flag the mismatched starting position: %v", problems)
	}
}

func TestVerifyIntegrityEmptyTables(t *testing.T) {
	if problems := VerifyIntegrity(nil, nil); len(problems) != 0 {
		t.Errorf("VerifyIntegrity(nil, nil) reported %d problems, expected none", len(problems))
	}
}
