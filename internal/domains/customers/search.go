package customers

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/keyboxhn/keybox/internal/domains/customers/models"
)

// fold strips accents and case so "Peña" matches "pena".
// Transformers and casers keep state, so each call builds its own.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// Filter keeps the customers whose name, customer code or email contains
// query. An empty query keeps everything.
func Filter(list []models.Customer, query string) []models.Customer {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}

	needle := fold(query)
	out := make([]models.Customer, 0, len(list))
	for _, c := range list {
		if strings.Contains(fold(c.Name), needle) ||
			strings.Contains(fold(c.CustomerCode), needle) ||
			(c.Email.Valid && strings.Contains(fold(c.Email.String), needle)) {
			out = append(out, c)
		}
	}
	return out
}
