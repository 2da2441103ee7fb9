// Package diagnostic collects non-fatal observations made while signing a schema.
//
// Key capabilities:
//   - Alias enums excluded from signing
//   - Fields collapsed to raw bytes
//   - Recursive references replaced by placeholders
//   - Grouping by code for log summaries
package diagnostic
