// Package filesystem provides the production implementation of the
// types.FS interface, backed by the os package. Tests use the in-memory
// implementation from pkg/testutil instead.
package filesystem
