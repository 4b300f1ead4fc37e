// Package output handles everything that happens to a plugin after it has
// been generated:
//
//   - Writers (writer.go): the [Writer] interface with [StdoutWriter] and
//     [FileWriter]. File writes go through a temporary file so that a failed
//     run never leaves a truncated plugin behind.
//
//   - Summaries (summary.go): a flat description of a filter definition for
//     `pvfilter inspect`, encoded as a table, JSON or YAML through the format
//     [Registry].
//
//   - Validation (validator.go): structural checks on a generated plugin
//     document, reported as [ValidationResult] findings.
package output
