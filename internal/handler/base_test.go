package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	current, err := url.Parse("/search?q=flask&page=2&limit=10")
	require.NoError(t, err)

	assert.Equal(t, "/search?limit=10&page=3&q=flask", pageURL(current, 3))

	current, err = url.Parse("/keyword/web")
	require.NoError(t, err)

	assert.Equal(t, "/keyword/web?page=2", pageURL(current, 2))
}

func TestListPackagesRequest_Query(t *testing.T) {
	req := &ListPackagesRequest{Keyword: "web", Page: "3", Limit: "oops"}
	q := req.Query()

	assert.Equal(t, "web", q.Keyword)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 0, q.Limit)

	assert.Equal(t, 1, (&ListPackagesRequest{}).Query().Page)
}

func TestHTMLResponseHandler_Redirect(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/pypi/flask", nil), rec)

	err := HTMLResponseHandler{status: http.StatusOK}.Handle(c, &render.Page{Redirect: "/pypi/Flask"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/pypi/Flask", rec.Header().Get(echo.HeaderLocation))
}

func TestHTMLResponseHandler_RequiresPage(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Error(t, HTMLResponseHandler{status: http.StatusOK}.Handle(c, "not a page"))
}

func TestTextResponseHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/robots.txt", nil), rec)

	require.NoError(t, TextResponseHandler{status: http.StatusOK}.Handle(c, RobotsTxt))

	assert.Equal(t, "Disallow: /static/*\n", rec.Body.String())
	assert.Equal(t, echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
}
