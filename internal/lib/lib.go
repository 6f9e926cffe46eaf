// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains the Redis stats cache, background job processing
// (using Redis/Asynq) and small shared utilities.
package lib
