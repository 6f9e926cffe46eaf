// Package repository handles all interactions with the document store.
//
// It builds MongoDB query documents from typed filters and exposes
// read-only methods over the package collection, keeping driver
// details away from the service layer.
package repository
