package validate

import (
	"regexp"
	"strconv"
	"strings"
)

// CategoryValidator adds category-specific rules that run before the
// generic checks. Check returns (verdict, decided); an undecided result
// falls through to the generic rules.
type CategoryValidator interface {
	Applies(product string) bool
	Check(text string) (verdict, decided bool)
}

func defaultCategoryValidators() []CategoryValidator {
	return []CategoryValidator{gpuValidator{}}
}

// gpuValidator knows GPU model naming. It allow-lists short model codes
// the generic length/structure rules would reject, and rejects model
// numbers outside any shipped series.
type gpuValidator struct{}

var (
	gpuQueryTerms = []string{"gpu", "graphics", "video card"}

	nvidiaPattern = regexp.MustCompile(`(?i)^(?:nvidia |geforce )?(rtx|gtx) ?(\d{3,4})(?: ?(?:ti|super))?$`)
	radeonPattern = regexp.MustCompile(`(?i)^(?:amd )?(?:radeon )?rx ?(\d{3,4})(?: ?xtx?)?$`)
	arcPattern    = regexp.MustCompile(`(?i)^(?:intel )?arc ?([a-z])?(\d{3})$`)
)

func (gpuValidator) Applies(product string) bool {
	lower := strings.ToLower(product)
	for _, term := range gpuQueryTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (gpuValidator) Check(text string) (bool, bool) {
	if m := nvidiaPattern.FindStringSubmatch(text); m != nil {
		num, _ := strconv.Atoi(m[2])
		// GTX topped out at the 16 series; RTX runs 2000-5000.
		if strings.EqualFold(m[1], "gtx") {
			return num >= 200 && num < 2000, true
		}
		return num >= 2000 && num < 6000, true
	}

	if m := radeonPattern.FindStringSubmatch(text); m != nil {
		num, _ := strconv.Atoi(m[1])
		return num >= 400 && num < 8000, true
	}

	if m := arcPattern.FindStringSubmatch(text); m != nil {
		// Shipped series are A and B; a bare number is too vague.
		series := strings.ToUpper(m[1])
		return series == "A" || series == "B", true
	}

	return false, false
}
