// Package contactfilter scans outbound chat messages for off-platform
// contact info (phone numbers, emails, messenger handles) and masks the
// matched spans before delivery. It is pure in-process pattern
// matching: advisory only, it never blocks a send.
package contactfilter

import (
	"regexp"
	"sort"
	"strings"
)

// Masked spans are replaced with a fixed-width placeholder rather than
// a digit-preserving mask, so a partial number can never leak through.
const maskPlaceholder = "********"

// Separators bidders use to break up numbers: "010 - 1234 . 5678".
const sep = `[\s.\-_/,·]*`

var (
	mobileRe = regexp.MustCompile(`0` + sep + `1` + sep + `[016789](?:` + sep + `\d){7,8}`)

	landlineRe = regexp.MustCompile(`(?:02|0[3-6]\d|070)` + sep + `\d{3,4}` + sep + `\d{4}`)

	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Messenger-handle phrases: "카톡 아이디 phm123", "telegram: @pharm_kim".
	handleRe = regexp.MustCompile(`(?i)(?:카카오톡|카카오` + `\s*아이디|카톡|톡아이디|텔레그램|라인|인스타|kakao|katalk|telegram|insta)` +
		`\s*(?:id|아이디)?\s*[:：]?\s*@?[A-Za-z0-9_.\-]{3,}`)

	// Bare digit runs long enough to encode a number once separators
	// are stripped: "8 8 7 7 - 6 6 5 5 4". Price-suffixed amounts are
	// excluded after matching.
	digitRunRe = regexp.MustCompile(`\d(?:` + sep + `\d){6,}`)

	priceSuffixRe = regexp.MustCompile(`^\s*(?:원|만원|만|억|억원|천만)`)
)

// Result holds the outcome of a scan.
type Result struct {
	FilteredContent string
	ContainsContact bool
}

type span struct {
	start, end int
}

// Scan runs every detector over the content, masks the union of all
// matched spans and reports whether anything was found. The original
// content is never modified; callers persist both versions.
func Scan(content string) Result {
	var spans []span

	for _, re := range []*regexp.Regexp{mobileRe, landlineRe, emailRe, handleRe} {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	for _, loc := range digitRunRe.FindAllStringIndex(content, -1) {
		if isPriceLike(content, loc[1]) {
			continue
		}
		spans = append(spans, span{loc[0], loc[1]})
	}

	if len(spans) == 0 {
		return Result{FilteredContent: content, ContainsContact: false}
	}

	merged := mergeSpans(spans)
	var b strings.Builder
	last := 0
	for _, s := range merged {
		b.WriteString(content[last:s.start])
		b.WriteString(maskPlaceholder)
		last = s.end
	}
	b.WriteString(content[last:])

	return Result{FilteredContent: b.String(), ContainsContact: true}
}

// isPriceLike reports whether the digit run ending at end reads as an
// amount (price-suffixed), which is legitimate listing talk and not a
// contact number.
func isPriceLike(content string, end int) bool {
	return priceSuffixRe.MatchString(content[end:])
}

// mergeSpans sorts and coalesces overlapping or adjacent spans so a
// number matched by several detectors is masked once.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start == spans[j].start {
			return spans[i].end > spans[j].end
		}
		return spans[i].start < spans[j].start
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
