package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugSuffixLength   = 4
)

var (
	slugNonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	slugAllowed         = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSuffixAllowed   = regexp.MustCompile(`^[a-z0-9]{4}$`)
)

// SuffixGenerator produces the random tail appended to every slug.
type SuffixGenerator func() (string, error)

func NanoSuffix() (string, error) {
	suffix, err := gonanoid.Generate(slugSuffixAlphabet, slugSuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}
	return suffix, nil
}

// Letters NFKD leaves intact.
var slugLetterFolds = strings.NewReplacer(
	"ı", "i", "İ", "i", "ø", "o", "Ø", "o", "ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d", "ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
)

// Slugify lowercases the title, folds accented letters to ASCII and joins
// the remaining alphanumeric runs with single hyphens. Any other non-ASCII
// rune separates words.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), slugLetterFolds.Replace(title))
	if err != nil {
		folded = title
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return ' '
		}
		return r
	}, folded)
	slug := slugNonAlphanumeric.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// BuildSlug joins the slugified title and suffix. Titles with no usable
// characters fall back to "listing".
func BuildSlug(title, suffix string) (string, error) {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if !slugSuffixAllowed.MatchString(suffix) {
		return "", fmt.Errorf("invalid slug suffix %q", suffix)
	}
	base := Slugify(title)
	if base == "" {
		base = "listing"
	}
	slug := base + "-" + suffix
	if !slugAllowed.MatchString(slug) {
		return "", fmt.Errorf("invalid slug %q", slug)
	}
	return slug, nil
}
