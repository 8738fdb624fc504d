package grammarcore

// ScopeName is an opaque, nonzero handle naming a scope (e.g.
// "string.quoted.double"). Zero means "no scope" and is never emitted.
// The core never resolves a ScopeName back to a string; string<->handle
// resolution belongs to a grammar loader (see package loader).
type ScopeName uint32

// NoScope is the zero ScopeName: "no scope applied".
const NoScope ScopeName = 0
