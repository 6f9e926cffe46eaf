// Package handler is the HTTP layer between the router and the services.
//
// Every endpoint is a typed function wrapped by Handle, HandlePage or
// HandleText: the request struct is bound from path and query parameters,
// validated, passed to the endpoint, and the result is written as JSON,
// as a rendered page (or redirect), or as plain text.
package handler
