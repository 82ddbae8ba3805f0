// Package core provides the business logic for delimited-file analysis.
//
// This package ties the detectors together and is independent of any UI or
// transport layer. It is used by the web handlers and the CLI alike.
//
// # Analysis Flow
//
// [Service.Analyze] examines one [Source] in several passes, re-opening it
// for each:
//
//  1. The raw bytes are sampled to guess the character encoding, falling back
//     to [Options.DefaultCharset] when the guess is inconclusive.
//  2. The decoded text is handed to the delimiter detector, which reports the
//     delimiter, enclosure, field count and the junk lines around the data.
//  3. The data block is split into fields and every column is fed to a
//     [FieldEvaluator] to infer its type, length, precision and format.
//  4. The first data line is compared against the rest to decide whether it
//     is a header.
//
// The result is a [FileMetadata] record, persisted through a [HistoryStore]
// when one is configured.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (missing, empty, size, read failures)
//   - FMT001-FMT003: Format errors (no consistent layout, bad candidates)
//   - ENC001: Encoding errors (unknown charset names)
//   - OPT001: Option values that cannot be parsed
//   - ANL001-ANL005: Analysis and history errors
//   - DB001-DB003: History storage errors
package core
