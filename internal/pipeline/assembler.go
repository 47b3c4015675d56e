package pipeline

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nleskov/modelscout/internal/model"
)

const buyLinkFormat = "https://www.amazon.com/s?k=%s&tag=allurecomreco-20"

// Assembler turns a winning candidate into the per-source result shape.
type Assembler struct {
	maxDescriptionLen int
}

// NewAssembler creates an assembler. maxDescriptionLen bounds the
// description field; zero or negative means the built-in default.
func NewAssembler(maxDescriptionLen int) *Assembler {
	if maxDescriptionLen <= 0 {
		maxDescriptionLen = 280
	}
	return &Assembler{maxDescriptionLen: maxDescriptionLen}
}

// Assemble builds the outward-facing result for one source's winner. The
// product field carries the normalized name so callers see exactly the
// key the grouping used.
func (a *Assembler) Assemble(candidate *model.ProductCandidate, query model.Query) model.SourceResult {
	name := candidate.NormalizedName

	sources := candidate.SupportingURLs
	if len(sources) > 3 {
		sources = sources[:3]
	}

	return model.SourceResult{
		Product:     name,
		Description: a.description(candidate, query, name),
		Sources:     sources,
		BuyLink:     fmt.Sprintf(buyLinkFormat, url.QueryEscape(name)),
	}
}

// description prefers the snippet from the most popular mention. When no
// snippet survived, it synthesizes one from the query so the field is
// never empty.
func (a *Assembler) description(candidate *model.ProductCandidate, query model.Query, name string) string {
	desc := strings.TrimSpace(candidate.TopSnippet)
	if desc == "" {
		desc = fmt.Sprintf("The %s, a frequently recommended %s", name, strings.ToLower(query.Product))
		if len(query.Attributes) > 0 {
			desc += " (" + strings.Join(query.Attributes, ", ") + ")"
		}
	}
	return truncate(desc, a.maxDescriptionLen)
}

// truncate cuts at a word boundary where possible and appends an
// ellipsis when anything was dropped.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
