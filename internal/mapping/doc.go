// Package mapping reads and writes the mapping artifacts produced by a
// matching run: ordered key/value records from a reference type name to an
// obfuscated type name.
//
// The file format follows the extension:
//
//	exact_matches.json   {"PlayerLoginReq": "ABCDEFGHIJK", ...}
//	seq_matches.yaml     PlayerLoginReq: ABCDEFGHIJK
//
// Record order is kept in both directions.
package mapping
