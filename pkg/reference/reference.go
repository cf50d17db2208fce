// Package reference builds human-readable purchase-order references such
// as "BC-DUP-ALPHA-JD-2608291504-X7K2" (bon de commande). References are
// collision-avoidant, not collision-free: the caller retries with a
// fresh one when the store reports a uniqueness conflict.
package reference

import (
	"math/rand"
	"strings"
	"time"
)

// Prefix is the leading segment of every generated reference.
const Prefix = "BC"

// suffixAlphabet leaves out 0/O, 1/I and L to keep references readable
// over the phone.
const suffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const suffixLength = 4

// Generator produces order references. The clock and random source are
// injectable so the deterministic parts can be tested.
type Generator struct {
	now func() time.Time
	rnd *rand.Rand
}

// New returns a Generator backed by the wall clock and a time-seeded
// random source.
func New() *Generator {
	return &Generator{
		now: time.Now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewWithSource returns a Generator with an explicit clock and random
// source, used in tests.
func NewWithSource(now func() time.Time, rnd *rand.Rand) *Generator {
	return &Generator{now: now, rnd: rnd}
}

// NewReference builds a reference from the supplier name, project code
// and ordering user's initials, stamped with the current time down to
// the minute plus a random suffix. Two calls in the same minute differ
// by suffix only.
func (g *Generator) NewReference(supplierName, projectCode, userInitials string) string {
	sup := segment(supplierName, 3, "FRN")
	proj := segment(projectCode, 6, "GEN")
	ini := segment(userInitials, 3, "NA")
	stamp := g.now().Format("0601021504")

	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = suffixAlphabet[g.rnd.Intn(len(suffixAlphabet))]
	}

	return strings.Join([]string{Prefix, sup, proj, ini, stamp, string(suffix)}, "-")
}

// Initials derives user initials from first and last name, e.g.
// ("Jean", "Dupont") -> "JD".
func Initials(firstName, lastName string) string {
	var b strings.Builder
	for _, name := range []string{firstName, lastName} {
		for _, r := range name {
			folded := foldRune(r)
			if folded != 0 {
				b.WriteByte(folded)
				break
			}
		}
	}
	return b.String()
}

// segment uppercases, folds accents, strips everything outside [A-Z0-9]
// and clamps to maxLen; fallback covers empty results.
func segment(s string, maxLen int, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		if folded := foldRune(r); folded != 0 {
			b.WriteByte(folded)
			if b.Len() == maxLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// foldRune maps a rune to its uppercase ASCII form, folding the accented
// letters that show up in French supplier names. Returns 0 for runes
// that do not contribute to a reference.
func foldRune(r rune) byte {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r - 'a' + 'A')
	case r >= 'A' && r <= 'Z':
		return byte(r)
	case r >= '0' && r <= '9':
		return byte(r)
	}
	switch r {
	case 'à', 'â', 'ä', 'À', 'Â', 'Ä':
		return 'A'
	case 'é', 'è', 'ê', 'ë', 'É', 'È', 'Ê', 'Ë':
		return 'E'
	case 'î', 'ï', 'Î', 'Ï':
		return 'I'
	case 'ô', 'ö', 'Ô', 'Ö':
		return 'O'
	case 'ù', 'û', 'ü', 'Ù', 'Û', 'Ü':
		return 'U'
	case 'ç', 'Ç':
		return 'C'
	}
	return 0
}
