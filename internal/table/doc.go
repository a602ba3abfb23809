// Package table holds the in-memory data model shared by the loaders, the
// cleaning pipeline and the exporters.
//
// A Table is a named, ordered list of columns. Every Column carries an
// explicit type tag (Text or Numeric) assigned when the data is loaded, and a
// slice of Values aligned by row position. A Value is either Missing, a text
// string or a float64 number; Missing is distinct from the empty string.
//
// Tables are plain values owned by one goroutine at a time. Callers that hand
// a Table to another stage should pass a Clone.
package table
