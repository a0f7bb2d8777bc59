package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsDiacritics(t *testing.T) {
	assert.Equal(t, "ficcao", Normalize("Ficção"))
	assert.Equal(t, "jose saramago", Normalize("José Saramago"))
	assert.Equal(t, "uber", Normalize("Über"))
}

func TestNormalizeLowersAndTrims(t *testing.T) {
	assert.Equal(t, "sci-fi", Normalize("  SCI-FI  "))
	assert.Equal(t, "machado de assis", Normalize("Machado de Assis"))
}

func TestNormalizeEquivalentVariantsMatch(t *testing.T) {
	variants := []string{"Ficção", "FICÇÃO", "ficcao", " Ficcao "}
	want := Normalize(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, Normalize(v), "variant %q", v)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}
