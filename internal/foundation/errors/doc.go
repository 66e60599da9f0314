// Package errors provides the classified error primitives used across sitebuild.
//
// A ClassifiedError carries a category (config, plugin, bundle, ...), a severity
// and a retry strategy next to the usual message and cause. Errors are built with
// a fluent builder:
//
//	err := errors.WrapError(cause, errors.CategoryBundle, "render page").
//		WithContext("page", "docs/intro.md").
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
