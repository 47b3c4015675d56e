package extract

import (
	"regexp"
	"strings"
)

// CategoryPatterns bundles the model-name regexes for one product
// category. Category sets are tried before the generic pattern so that
// well-known naming schemes (iPhone 15 Pro, Dyson V15) win over the
// loose capitalized-span heuristic.
type CategoryPatterns struct {
	Name     string
	Keywords []string // Query terms that select this category
	Patterns []*regexp.Regexp
}

var categoryRegistry = []CategoryPatterns{
	{
		Name:     "phone",
		Keywords: []string{"phone", "smartphone"},
		Patterns: compile(
			`iPhone \d+(?: Pro)?(?: Max)?`,
			`Samsung Galaxy S\d+(?: Ultra)?`,
			`Google Pixel \d+(?: Pro)?`,
			`OnePlus \d+(?: Pro)?`,
			`Xiaomi Mi \d+`,
			`Motorola \w+ \d+`,
		),
	},
	{
		Name:     "vacuum",
		Keywords: []string{"vacuum"},
		Patterns: compile(
			`Dyson V\d+(?: [A-Z]\w+)*`,
			`Shark [A-Z]\w+(?: [A-Z][\w-]+){0,3}`,
			`Miele [A-Z]\w+(?: [A-Z0-9][\w-]*){0,3}`,
			`Bissell [A-Z]\w+(?: [A-Z0-9][\w-]*){0,3}`,
			`Hoover [A-Z]\w+(?: [A-Z0-9][\w-]*){0,3}`,
			`Tineco [A-Z]\w+(?: [A-Z0-9][\w-]*){0,3}`,
			`Eureka [A-Z]\w+(?: [A-Z0-9][\w-]*){0,3}`,
		),
	},
	{
		Name:     "laptop",
		Keywords: []string{"laptop", "notebook", "ultrabook"},
		Patterns: compile(
			`MacBook (?:Air|Pro)(?: \d+)?(?:-inch)?`,
			`Dell XPS \d+`,
			`HP (?:Spectre|Envy|Pavilion|EliteBook) [\w-]+(?:[ -][\w-]+)*`,
			`Lenovo (?:ThinkPad|Yoga|Legion|IdeaPad) [\w-]+(?:[ -][\w-]+)*`,
			`ASUS (?:ZenBook|VivoBook|ROG|TUF) [\w-]+(?:[ -][\w-]+)*`,
			`Acer (?:Aspire|Predator|Swift|Nitro) [\w-]+(?:[ -][\w-]+)*`,
			`Microsoft Surface (?:Laptop|Book|Pro) \d+`,
		),
	},
	{
		Name:     "headphone",
		Keywords: []string{"headphone", "headphones", "earbuds"},
		Patterns: compile(
			`Sony WH-\d+XM\d+`,
			`Bose QuietComfort \d+`,
			`Apple AirPods(?: Pro| Max)?`,
			`Sennheiser (?:HD|Momentum) \d+(?:[ -]\w+)*`,
			`Jabra Elite \d+[tT]?`,
			`Audio-Technica ATH-\w+`,
		),
	},
	{
		Name:     "gpu",
		Keywords: []string{"gpu", "graphics", "graphics card", "video card"},
		Patterns: compile(
			`(?:NVIDIA |GeForce )?(?:RTX|GTX) ?\d{3,4}(?: ?(?:Ti|Super))?`,
			`(?:AMD )?Radeon RX ?\d{3,4}(?: ?XTX?)?`,
			`(?:Intel )?Arc ?[AB]\d{3}`,
		),
	},
	{
		Name:     "monitor",
		Keywords: []string{"monitor", "display"},
		Patterns: compile(
			`LG (?:UltraGear|UltraWide) [\w-]+(?:[ -][\w-]+)*`,
			`Samsung (?:Odyssey|ViewFinity) [\w-]+(?:[ -][\w-]+)*`,
			`Dell (?:Alienware|UltraSharp) [\w-]+(?:[ -][\w-]+)*`,
			`BenQ [\w-]+(?:[ -][\w-]+){0,3}`,
			`ViewSonic [\w-]+(?:[ -][\w-]+){0,3}`,
		),
	},
}

// genericModelPattern matches brand + model token sequences: a capitalized
// word followed by 1-3 capitalized or alphanumeric tokens ("Shark Navigator
// Lift-Away", "Sony WH-1000XM5").
var genericModelPattern = regexp.MustCompile(
	`[A-Z][a-zA-Z0-9]+ [A-Z0-9][a-zA-Z0-9-]+(?:[ -][A-Z0-9][a-zA-Z0-9-]*){0,2}`)

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// PatternsFor returns the category pattern set matching the product query,
// or nil when no category-specific set applies.
func PatternsFor(product string) *CategoryPatterns {
	lower := strings.ToLower(product)
	for i := range categoryRegistry {
		for _, kw := range categoryRegistry[i].Keywords {
			if strings.Contains(lower, kw) {
				return &categoryRegistry[i]
			}
		}
	}
	return nil
}
