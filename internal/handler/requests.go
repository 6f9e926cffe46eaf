package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/pydigger/pydigger/internal/service"
	"github.com/pydigger/pydigger/internal/validation"
)

var validate = validator.New()

// ListPackagesRequest is shared by every listing route. Each route fills
// at most one of the path parameters.
//
// Page and Limit stay strings: a malformed number falls back to the
// default instead of failing the request.
type ListPackagesRequest struct {
	Word    string `param:"word"`
	Keyword string `param:"keyword"`
	Author  string `param:"name"`
	Search  string `query:"q"`
	License string `query:"license"`
	Page    string `query:"page"`
	Limit   string `query:"limit"`
}

func (r *ListPackagesRequest) Validate() error {
	return validate.Struct(r)
}

// Query converts the request into service parameters. Missing or
// malformed numbers become page 1 and limit 0 (the configured default).
func (r *ListPackagesRequest) Query() service.ListQuery {
	return service.ListQuery{
		Word:    r.Word,
		Keyword: r.Keyword,
		Author:  r.Author,
		Search:  r.Search,
		License: r.License,
		Page:    validation.LenientInt(r.Page, 1),
		Limit:   validation.LenientInt(r.Limit, 0),
	}
}

type PackageDetailRequest struct {
	Name string `param:"name" validate:"required"`
}

func (r *PackageDetailRequest) Validate() error {
	return validate.Struct(r)
}

// EmptyRequest is used by routes without parameters.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}
