package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParsePageDefaults(t *testing.T) {
	page, size := parsePage(testContext(t, "/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

func TestParsePageExplicit(t *testing.T) {
	page, size := parsePage(testContext(t, "/?page=3&page_size=25"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)
}

func TestParsePageIgnoresGarbage(t *testing.T) {
	page, size := parsePage(testContext(t, "/?page=-1&page_size=abc"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

func TestParsePageCapsSize(t *testing.T) {
	_, size := parsePage(testContext(t, "/?page_size=5000"))
	assert.Equal(t, 100, size)
}

func TestGetUserID(t *testing.T) {
	c := testContext(t, "/")
	c.Set("user_id", uint64(9))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), id)
}

func TestGetUserIDMissing(t *testing.T) {
	_, err := getUserID(testContext(t, "/"))
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	c := testContext(t, "/")
	c.SetParamNames("id")
	c.SetParamValues("12")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	c.SetParamValues("zero")
	_, err = pathID(c, "id")
	assert.Error(t, err)

	c.SetParamValues("0")
	_, err = pathID(c, "id")
	assert.Error(t, err)
}

func TestValidScore(t *testing.T) {
	for _, s := range []int{1, 3, 5} {
		assert.True(t, validScore(s))
	}
	for _, s := range []int{0, -1, 6, 100} {
		assert.False(t, validScore(s))
	}
}
