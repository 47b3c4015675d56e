package validate

import (
	"regexp"
	"strings"

	"github.com/nleskov/modelscout/internal/model"
)

// Validator filters candidate mentions through rule sets. Validation is
// pure and stateless: no I/O, deterministic for the same input string.
type Validator struct {
	minLength  int
	maxLength  int
	denylist   map[string]bool
	categories []CategoryValidator
}

// NewValidator creates a validator from configuration.
func NewValidator(cfg model.ValidationConfig) *Validator {
	denylist := make(map[string]bool, len(cfg.BrandDenylist))
	for _, brand := range cfg.BrandDenylist {
		denylist[strings.ToLower(strings.TrimSpace(brand))] = true
	}

	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 4
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 60
	}

	return &Validator{
		minLength:  minLength,
		maxLength:  maxLength,
		denylist:   denylist,
		categories: defaultCategoryValidators(),
	}
}

var (
	currencyPattern    = regexp.MustCompile(`^[$€£¥]\s?\d`)
	numericOnlyPattern = regexp.MustCompile(`^\d+([.,]\d+)*$`)
	unitPattern        = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s?(%|kg|g|lbs?|oz|gb|tb|mb|mm|cm|in|inch(es)?|hz|w|v|mah)$`)
	datePattern        = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`)
	letterPattern      = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern       = regexp.MustCompile(`\d`)
)

// Validate reports whether the matched text plausibly names a complete
// product model. product selects category-specific rules, which take
// precedence over the generic checks.
func (v *Validator) Validate(text, product string) bool {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return false
	}

	// Category validators first: they may allow-list short tokens the
	// generic rules would reject (e.g. "RTX 4070").
	for _, cat := range v.categories {
		if !cat.Applies(product) {
			continue
		}
		if verdict, decided := cat.Check(text); decided {
			return verdict
		}
	}

	if len(text) < v.minLength || len(text) > v.maxLength {
		return false
	}

	if looksLikeQuantity(text) {
		return false
	}

	lower := strings.ToLower(text)
	if v.denylist[lower] {
		return false // Bare brand with no model qualifier
	}

	return v.hasModelStructure(text)
}

// looksLikeQuantity rejects prices, dates, and bare measurements.
func looksLikeQuantity(text string) bool {
	return currencyPattern.MatchString(text) ||
		numericOnlyPattern.MatchString(text) ||
		unitPattern.MatchString(text) ||
		datePattern.MatchString(text)
}

// hasModelStructure requires at least one alphanumeric token beyond the
// brand word. Single tokens pass only when they mix letters and digits
// the way model codes do ("WH-1000XM5").
func (v *Validator) hasModelStructure(text string) bool {
	tokens := strings.Fields(text)

	if len(tokens) == 1 {
		token := tokens[0]
		return letterPattern.MatchString(token) && digitPattern.MatchString(token) &&
			!v.denylist[strings.ToLower(token)]
	}

	// Multi-word: the tokens after the first must carry something beyond
	// a second bare brand name.
	for _, token := range tokens[1:] {
		if v.denylist[strings.ToLower(token)] {
			continue
		}
		if letterPattern.MatchString(token) || digitPattern.MatchString(token) {
			return true
		}
	}
	return false
}
