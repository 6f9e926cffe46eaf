package storeerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pydigger/pydigger/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HandleError converts a store error into an application-level error.
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - NotFound: 404 naming the entity ("Package not found")
//   - Timeout / Network: 503
//   - InvalidQuery: 400
//   - Canceled / Other: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	collection := ""
	var storeErr *Error
	if errors.As(err, &storeErr) {
		collection = storeErr.Collection
	}

	switch Classify(err) {
	case NotFound:
		code := generateErrorCode(collection, NotFound)
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName(collection)), true, &code)
	case Timeout, Network:
		return errs.NewServiceUnavailableError()
	case InvalidQuery:
		code := generateErrorCode(collection, InvalidQuery)
		return errs.NewBadRequestError("The query could not be processed", true, &code, nil)
	}

	return errs.NewInternalServerError()
}

// generateErrorCode builds <ENTITY>_<CATEGORY>, e.g. PACKAGE_NOT_FOUND.
func generateErrorCode(collection string, code Code) string {
	domain := strings.ToUpper(singular(collection))
	if domain == "" {
		domain = "RECORD"
	}
	return fmt.Sprintf("%s_%s", domain, strings.ToUpper(string(code)))
}

// entityName turns "packages" into "Package".
func entityName(collection string) string {
	entity := singular(collection)
	if entity == "" {
		return "Record"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(entity, "_", " "))
}

func singular(collection string) string {
	if len(collection) > 1 && strings.HasSuffix(collection, "s") {
		return collection[:len(collection)-1]
	}
	return collection
}
