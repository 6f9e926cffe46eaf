// Package validation binds request data (path and query parameters)
// into typed request structs and validates them.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and converts validation errors into field errors the client can read.
package validation
