package calculator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

var (
	countPrefix  = regexp.MustCompile(`^(\d+)\s*x\s`)
	weightSuffix = regexp.MustCompile(`(?i)\((\d+)\s*g\)$`)
)

// ComplimentaryMarker is appended to the label of zero-price lines.
const ComplimentaryMarker = " (Z)"

// LegacyLine is what can be recovered from a rendered bill line label.
type LegacyLine struct {
	MenuItemID string
	Grams      int
}

// ParseLegacyName recovers the menu item behind a label such as
// "2 x Kuřecí (350g)" or "Pečená brambora (Z)". The residual name must match
// a menu item name exactly; anything else reports false.
//
// Only snapshots written before lines carried menuItemId need this.
func ParseLegacyName(menu []models.MenuItem, name string) (LegacyLine, bool) {
	if name == "" {
		return LegacyLine{}, false
	}

	base := name
	if loc := countPrefix.FindStringIndex(base); loc != nil {
		base = base[loc[1]:]
	}

	var grams int
	if m := weightSuffix.FindStringSubmatchIndex(base); m != nil {
		grams, _ = strconv.Atoi(base[m[2]:m[3]])
		base = strings.TrimSpace(base[:m[0]])
	}
	base = strings.TrimSpace(strings.Replace(base, ComplimentaryMarker, "", 1))

	for _, item := range menu {
		if item.Name == base {
			return LegacyLine{MenuItemID: item.ID, Grams: grams}, true
		}
	}
	return LegacyLine{}, false
}
