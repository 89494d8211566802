package classify

import "strings"

// RegionNational is the region tag for documents that do not name a
// specific fishing area in their filename.
const RegionNational = "national"

// regions is the fixed list of fishing-area tags, matched against
// normalized filenames. Longer names come first so "bay-of-plenty" wins
// over any shorter accidental substring.
var regions = []string{
	"bay-of-plenty",
	"hawkes-bay",
	"west-coast",
	"marlborough",
	"canterbury",
	"wellington",
	"northland",
	"southland",
	"fiordland",
	"auckland",
	"taranaki",
	"gisborne",
	"waikato",
	"nelson",
	"otago",
	"kermadec",
	"chatham",
	"kaikoura",
}

// Region infers the fishing-area tag from a staged file's name. Separator
// characters in the filename are normalized to hyphens before matching, so
// "Bay_of_Plenty_rules_2024.pdf" and "bay of plenty.pdf" both tag as
// bay-of-plenty. Files naming no known area tag as national; chunks inherit
// the document's tag.
func Region(fileName string) string {
	normalized := strings.ToLower(fileName)
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '.':
			return '-'
		}
		return r
	}, normalized)

	for _, region := range regions {
		if strings.Contains(normalized, region) {
			return region
		}
	}
	return RegionNational
}
