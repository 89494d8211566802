// Package classify assigns section labels and keyword tags to regulation
// chunks. This is a static rule table, not a learned model: an ordered list
// of (predicate, label) pairs evaluated first-match-wins, with a fallback
// label when nothing matches. Classification is deterministic, total, and
// idempotent.
package classify

import "strings"

// Section labels, in rule priority order.
const (
	SectionDailyBagLimits       = "Daily Bag Limits"
	SectionSizeRestrictions     = "Size Restrictions"
	SectionProtectedAreas       = "Protected Areas"
	SectionFishingMethods       = "Fishing Methods"
	SectionSeasonalRestrictions = "Seasonal Restrictions"
	SectionCommercial           = "Commercial Regulations"
	SectionRecreational         = "Recreational Fishing"
	SectionSpeciesSpecific      = "Species-Specific Rules"
	SectionGeneral              = "General Regulations"
)

// speciesTerms are the species names in the fixed keyword vocabulary.
var speciesTerms = []string{"snapper", "kahawai", "kingfish", "crayfish", "paua"}

// rule is one (predicate, label) pair. Predicates are case-insensitive
// substring matches over any of the listed terms.
type rule struct {
	section string
	terms   []string
}

// rules is the priority-ordered rule table. Order is load-bearing: the
// first matching rule wins, so e.g. a chunk mentioning both "bag limit"
// and "snapper" classifies as Daily Bag Limits, not Species-Specific Rules.
var rules = []rule{
	{SectionDailyBagLimits, []string{"bag limit", "daily limit", "per person", "take per day"}},
	{SectionSizeRestrictions, []string{"minimum size", "legal size", "size limit", "minimum length", "cm"}},
	{SectionProtectedAreas, []string{"marine reserve", "protected area", "no fishing zone", "closed area"}},
	{SectionFishingMethods, []string{"net", "line", "spear", "pot", "longline", "trawl"}},
	{SectionSeasonalRestrictions, []string{"season", "closed from", "closure period", "spawning"}},
	{SectionCommercial, []string{"commercial", "quota", "catch entitlement", "licence"}},
	{SectionRecreational, []string{"recreational", "amateur"}},
	{SectionSpeciesSpecific, speciesTerms},
}

// keywordVocabulary maps each fixed keyword tag to the terms that trigger it.
var keywordVocabulary = []struct {
	keyword string
	terms   []string
}{
	{"snapper", []string{"snapper"}},
	{"kahawai", []string{"kahawai"}},
	{"kingfish", []string{"kingfish"}},
	{"crayfish", []string{"crayfish"}},
	{"paua", []string{"paua"}},
	{"bag-limit", []string{"bag limit", "daily limit"}},
	{"size-limit", []string{"minimum size", "size limit", "legal size"}},
}

// Sections returns all section labels in priority order, the fallback last.
func Sections() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.section)
	}
	return append(out, SectionGeneral)
}

// Section assigns exactly one section label to the chunk text. A chunk
// matching no rule falls through to General Regulations.
func Section(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, term := range r.terms {
			if strings.Contains(lower, term) {
				return r.section
			}
		}
	}
	return SectionGeneral
}

// Keywords extracts the keyword tags present in the chunk text, drawn from
// the fixed vocabulary. A text matching nothing yields an empty (non-nil)
// set so the stored keyword array is always present.
func Keywords(text string) []string {
	lower := strings.ToLower(text)
	keywords := make([]string, 0, 4)
	for _, kv := range keywordVocabulary {
		for _, term := range kv.terms {
			if strings.Contains(lower, term) {
				keywords = append(keywords, kv.keyword)
				break
			}
		}
	}
	return keywords
}
