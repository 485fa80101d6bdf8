// Package normalize coerces free text into canonical titles and domain enumerations.
//
// Every function is pure and total: empty or malformed input yields a zero value
// or the [Unrecognized] sentinel, never a panic or an error. Fallback defaults
// used across the importer live here as named constants.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Unrecognized is returned by [Platform] and [Status] when no keyword matches.
const Unrecognized = ""

const (
	DefaultPlatform    = models.PlatformPC
	DefaultStatus      = models.StatusBacklog
	EveryoneMemberID   = "everyone"
	EveryoneMemberName = "Everyone"
	SteamAccountLabel  = "Steam"
)

var (
	urls       = regexp.MustCompile(`https?://\S+`)
	separators = regexp.MustCompile(`\s*[:|\x{2013}\x{2014}-]\s*`)
	steamAppID = regexp.MustCompile(`(?:store\.steampowered\.com/app/|steam://(?:run|rungameid|store)/)(\d+)`)
)

type keywordRule[T any] struct {
	pattern *regexp.Regexp
	value   T
}

// Order matters: the first matching rule wins.
var platformRules = []keywordRule[models.Platform]{
	{regexp.MustCompile(`pc|steam|epic|gog`), models.PlatformPC},
	{regexp.MustCompile(`xbox`), models.PlatformXbox},
	{regexp.MustCompile(`ps|playstation`), models.PlatformPlayStation},
	{regexp.MustCompile(`switch|nintendo`), models.PlatformSwitch},
	{regexp.MustCompile(`android|mobile`), models.PlatformAndroid},
}

var statusRules = []keywordRule[models.Status]{
	{regexp.MustCompile(`backlog`), models.StatusBacklog},
	{regexp.MustCompile(`play(ing)?`), models.StatusPlaying},
	{regexp.MustCompile(`beat|clear|finished`), models.StatusBeaten},
	{regexp.MustCompile(`abandon|drop`), models.StatusAbandoned},
	{regexp.MustCompile(`wish`), models.StatusWishlist},
	{regexp.MustCompile(`own|library|purchased`), models.StatusOwned},
}

// Title trims, lowercases and collapses Unicode whitespace runs (NBSP included)
// to a single space. The result is NFC-composed so visually identical titles
// share one key.
func Title(s string) string {
	return collapse(norm.NFC.String(strings.ToLower(s)))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractTitle strips URLs, then returns the text left of the first separator
// (colon, pipe, hyphen, en or em dash). Falls back to the whole URL-stripped text.
func ExtractTitle(s string) string {
	stripped := strings.TrimSpace(urls.ReplaceAllString(s, ""))
	if stripped == "" {
		return ""
	}
	first := strings.TrimSpace(separators.Split(stripped, 2)[0])
	if first == "" {
		return stripped
	}
	return first
}

// IdentityKey is the natural key of an identity within and across batches.
func IdentityKey(title string, platform models.Platform) string {
	return Title(title) + "__" + string(platform)
}

// Label normalizes an account label or member name for lookups.
func Label(s string) string {
	return collapse(strings.ToLower(s))
}

// Platform maps free text to a platform or [Unrecognized].
func Platform(s string) models.Platform {
	return match(platformRules, s)
}

// PlatformOrDefault maps free text to a platform, falling back to [DefaultPlatform].
func PlatformOrDefault(s string) models.Platform {
	if p := Platform(s); p != Unrecognized {
		return p
	}
	return DefaultPlatform
}

// Status maps free text to a status or [Unrecognized].
func Status(s string) models.Status {
	return match(statusRules, s)
}

// StatusOrDefault maps free text to a status, falling back to [DefaultStatus].
func StatusOrDefault(s string) models.Status {
	if st := Status(s); st != Unrecognized {
		return st
	}
	return DefaultStatus
}

func match[T ~string](rules []keywordRule[T], s string) T {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return T(Unrecognized)
	}
	for _, r := range rules {
		if r.pattern.MatchString(t) {
			return r.value
		}
	}
	return T(Unrecognized)
}

// AccountHint is an account inferred from a storefront URL embedded in free text.
type AccountHint struct {
	Label    string
	Platform models.Platform
	AppID    *int
}

// DetectAccount recognizes storefront URLs in s. Returns false when nothing is recognized.
func DetectAccount(s string) (AccountHint, bool) {
	t := strings.ToLower(s)
	if !strings.Contains(t, "store.steampowered.com") && !strings.Contains(t, "steam://") {
		return AccountHint{}, false
	}

	hint := AccountHint{Label: SteamAccountLabel, Platform: models.PlatformPC}
	if m := steamAppID.FindStringSubmatch(t); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			hint.AppID = &id
		}
	}
	return hint, true
}

// OptionalNumber parses s as a finite float. Empty or invalid text, including
// "inf" and "NaN", yields nil, never zero.
func OptionalNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// OptionalDecimal parses s as a decimal amount, accepting a decimal comma
// ("149,90") and a currency sign. Empty or invalid text yields nil.
func OptionalDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "₺"), "TRY")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// Services splits a comma or semicolon separated list, trimming tags and dropping empties and repeats.
func Services(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

// PricePerHour divides price by hours, rounded to two decimals.
// Returns nil when either value is missing or zero, or hours are not positive.
func PricePerHour(price *decimal.Decimal, hours *float64) *decimal.Decimal {
	if price == nil || hours == nil || price.IsZero() || *hours <= 0 {
		return nil
	}
	pph := price.Div(decimal.NewFromFloat(*hours)).Round(2)
	return &pph
}
