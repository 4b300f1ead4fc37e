// Package watch regenerates a plugin whenever its definition, a file in its
// extends chain, or one of its script files changes. Bursts of events are
// debounced into a single run.
package watch
