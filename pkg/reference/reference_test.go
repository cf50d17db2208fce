package reference

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 29, 15, 4, 0, 0, time.UTC)
}

func TestNewReferenceFormat(t *testing.T) {
	g := NewWithSource(fixedClock, rand.New(rand.NewSource(1)))

	ref := g.NewReference("Dupont Matériaux", "ALPHA-12", "JD")
	assert.Regexp(t, regexp.MustCompile(`^BC-DUP-ALPHA1-JD-2608291504-[A-HJ-NP-Z2-9]{4}$`), ref)
}

func TestNewReferenceFoldsAccents(t *testing.T) {
	g := NewWithSource(fixedClock, rand.New(rand.NewSource(1)))

	ref := g.NewReference("Électricité Générale", "chantier nord", "él")
	assert.Contains(t, ref, "-ELE-")
	assert.Contains(t, ref, "-CHANTI-")
	assert.Contains(t, ref, "-EL-")
}

func TestNewReferenceFallbacks(t *testing.T) {
	g := NewWithSource(fixedClock, rand.New(rand.NewSource(1)))

	ref := g.NewReference("---", "", "  ")
	assert.Contains(t, ref, "-FRN-")
	assert.Contains(t, ref, "-GEN-")
	assert.Contains(t, ref, "-NA-")
}

// Same minute, same inputs: only the random suffix distinguishes two
// generated references, which is what the conflict-retry loop relies on.
func TestNewReferenceRetryProducesDifferentSuffix(t *testing.T) {
	g := NewWithSource(fixedClock, rand.New(rand.NewSource(99)))

	first := g.NewReference("Dupont", "ALPHA", "JD")
	second := g.NewReference("Dupont", "ALPHA", "JD")
	assert.NotEqual(t, first, second)
	assert.Equal(t, first[:len(first)-4], second[:len(second)-4])
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "JD", Initials("Jean", "Dupont"))
	assert.Equal(t, "ED", Initials("Élise", "da Silva"))
	assert.Equal(t, "M", Initials("", "Martin"))
	assert.Equal(t, "", Initials("", ""))
}
