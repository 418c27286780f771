package slugify

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,98}[a-z0-9]$`)
)

// latinFold maps the accented characters that show up in Malay store names.
var latinFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c",
)

// Slugify converts text into a URL-safe lowercase slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = latinFold.Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateUniqueSlug appends a random base36 suffix so two stores with the
// same display name get distinct slugs.
func GenerateUniqueSlug(text string) (string, error) {
	suffix, err := randomBase36(6)
	if err != nil {
		return "", err
	}
	base := Slugify(text)
	if base == "" {
		return "kedai-" + suffix, nil
	}
	return base + "-" + suffix, nil
}

// IsValidSlug reports whether slug is 3-100 chars of lowercase alphanumerics
// and single hyphens, starting and ending alphanumeric.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug) && !strings.Contains(slug, "--")
}

// GenerateOrderNumber produces a human-facing order number in the form
// KD-YYYYMMDD-XXXXX with an uppercase base36 suffix.
func GenerateOrderNumber() (string, error) {
	suffix, err := randomBase36(5)
	if err != nil {
		return "", err
	}
	dateStr := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("KD-%s-%s", dateStr, strings.ToUpper(suffix)), nil
}

func randomBase36(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid suffix length %d", length)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = base36[int(b)%len(base36)]
	}
	return string(out), nil
}
