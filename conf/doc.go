// Package conf implements the broker configuration DSL and its data model.
//
// The package has four layers, leaves first:
//
//   - Unit converters: ParseSize and ParseDuration turn size and duration
//     literals into canonical bytes and whole seconds, yielding 0 for
//     malformed input instead of an error.
//   - Lexer and recursive-descent parser: Parse and ParseFile turn DSL text
//     into a Document. Parsing is deliberately tolerant: malformed content
//     is skipped, unterminated blocks extend to end of input, unknown keys
//     are ignored, and the last occurrence of a duplicated key wins. The
//     only hard failure is an unreadable file.
//   - Validator: Validate and ValidateTransition are pure functions from
//     documents to a list of structured Violations. Semantic rejection
//     happens here, never in the parser.
//   - Diff engine: Diff is a pure function from two documents to an ordered
//     list of per-property Changes with stable paths.
//
// Documents are never mutated in place once published; derive a new one
// with Clone and modify the copy. Flatten renders a document as the flat
// key/value structure the external broker engine consumes.
package conf
