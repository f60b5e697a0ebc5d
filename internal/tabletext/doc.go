// Package tabletext reads and writes grids as flat delimited text.
//
// The format is one record per line with fields split on a literal
// separator string. There is no quoting: a field that contains the
// separator cannot be represented. Each column has a Parser that turns the
// raw field into a typed value; parsers are looked up by name from a small
// registry (see ParserByName and ParseSchema).
//
//	parsers, _ := tabletext.ParseSchema("integer,double")
//	g, err := tabletext.LoadString("a,b\n1,2.5\n", tabletext.Options{
//		Separator: ",",
//		Header:    true,
//		Parsers:   parsers,
//	})
//
// Load never returns a partially filled grid. RenderFile replaces its
// destination atomically.
package tabletext
