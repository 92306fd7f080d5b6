/*
Package styledtree is a straightforward default implementation of a styled
document tree.

Overview

Styled nodes wrap the element nodes of an HTML parse tree and carry the
per-element style bookkeeping the invalidation engine works on: the restyle
hint, the dirty-descendants traversal marker, the element's UI state bits
and a handle on the computed style. Pseudo-element boxes (::before/::after)
are styled nodes of their own, attached to their originating element but
kept out of the sibling axis.

The package also provides element snapshots: a snapshot captures an
element's id, classes, attributes and state as they were immediately before
the current mutation batch, so selector matching can be re-run against the
"as-it-was" element.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package styledtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.dom'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.dom")
}
