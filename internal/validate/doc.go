// Package validate implements per-tool argument schemas.
//
// A Schema performs type and shape checking, required-field enforcement,
// enum restriction, timestamp parsing, resource-name pattern matching and
// cross-field business rules, and applies defaults. Validation is pure and
// synchronous: it performs no I/O, so a validation failure can never be
// caused by network or auth conditions.
//
// On failure a schema reports a single deterministic error describing the
// first offending field in declaration order, the expected constraint, and
// the received value. Values are never silently coerced.
package validate
