// Package errs defines the application's HTTP error types.
//
// Handlers return these errors instead of writing error responses
// themselves. The global error handler turns them into an HTML error
// page (or a JSON body for the API) with the right status code.
package errs
