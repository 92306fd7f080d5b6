/*
Package restyle holds the shared kernel types of an incremental
style-invalidation engine: atoms, case-sensitivity and quirks-mode flags,
element-state bitsets and restyle hints.

Given that a DOM mutated (an attribute, class, id or UI state changed on
some element) or that the active set of style rules changed (a stylesheet
was added, removed or toggled), the engine decides the minimal set of
elements whose previously computed style may now be wrong and marks them
for recomputation, without re-running selector matching over the whole
document. The heavy lifting happens in the sub-packages:

▪︎ selector: compiled selectors and an offset-based matching primitive

▪︎ dom/styledtree: styled DOM nodes, element snapshots

▪︎ invalidation: dependency indices, the mutation collector, the
stylesheet invalidation set and the tree-invalidation driver

▪︎ cssom: the stylesheet model, device description and the stylist

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package restyle

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.core'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.core")
}
