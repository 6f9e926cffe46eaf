package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchRequest struct {
	Name string `param:"name" validate:"required"`
	Q    string `query:"q"`
}

func (r *searchRequest) Validate() error {
	return validator.New().Struct(r)
}

type brokenRequest struct{}

func (r *brokenRequest) Validate() error {
	return errors.New("unexpected")
}

func newContext(target string, names, values []string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func TestBindAndValidate(t *testing.T) {
	t.Run("binds path and query", func(t *testing.T) {
		c := newContext("/?q=web", []string{"name"}, []string{"flask"})
		req := &searchRequest{}

		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, "flask", req.Name)
		assert.Equal(t, "web", req.Q)
	})

	t.Run("tag failures become field errors", func(t *testing.T) {
		c := newContext("/?q="+strings.Repeat("a", 500), []string{"name"}, []string{""})

		err := BindAndValidate(c, &searchRequest{})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, []errs.FieldError{{Field: "name", Error: "is required"}}, httpErr.Errors)
	})

	t.Run("other validation errors", func(t *testing.T) {
		c := newContext("/", nil, nil)

		err := BindAndValidate(c, &brokenRequest{})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, []errs.FieldError{{Field: "request", Error: "unexpected"}}, httpErr.Errors)
	})
}

func TestLenientInt(t *testing.T) {
	assert.Equal(t, 3, LenientInt("3", 1))
	assert.Equal(t, 3, LenientInt(" 3 ", 1))
	assert.Equal(t, 0, LenientInt("0", 20))
	assert.Equal(t, -2, LenientInt("-2", 1))
	assert.Equal(t, 1, LenientInt("", 1))
	assert.Equal(t, 20, LenientInt("abc", 20))
	assert.Equal(t, 20, LenientInt("2.5", 20))
}
