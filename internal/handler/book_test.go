package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lucascassio/trocalivros/internal/model"
)

func TestFormString(t *testing.T) {
	form := map[string][]string{
		"title":    {"  Dom Casmurro  "},
		"synopsis": {""},
	}

	v, ok := formString(form, "title")
	assert.True(t, ok)
	assert.Equal(t, "Dom Casmurro", v)

	// Present but empty is distinct from absent: it clears the field.
	v, ok = formString(form, "synopsis")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = formString(form, "author")
	assert.False(t, ok)
}

func TestToBookResp(t *testing.T) {
	syn := "a synopsis"
	created := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	b := model.Book{
		ID:          4,
		OwnerID:     2,
		Title:       "Vidas Secas",
		Author:      "Graciliano Ramos",
		Genre:       "Romance",
		Publisher:   "Record",
		Pages:       176,
		Year:        1938,
		Synopsis:    &syn,
		CreatedAt:   created,
		IsAvailable: true,
	}
	resp := toBookResp(b)
	assert.Equal(t, uint64(4), resp.ID)
	assert.Equal(t, "2025-03-10T12:30:00Z", resp.CreatedAt)
	assert.Equal(t, &syn, resp.Synopsis)
	assert.Nil(t, resp.CoverImageURL)
	assert.True(t, resp.IsAvailable)
}
