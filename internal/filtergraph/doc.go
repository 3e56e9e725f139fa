// Package filtergraph compiles redactions into an engine processing graph.
//
// The graph is held as an ordered list of typed statements with named input
// and output links and is only serialized to the engine's textual grammar
// (`[in]filter=args,filter=args[out];...`) at the boundary via Graph.String.
// Compilation is a pure function: the same redactions in the same order with
// the same output size always produce a byte-identical description.
//
// Later redactions are composited on top of earlier ones, so slice order is
// compositing precedence.
package filtergraph
