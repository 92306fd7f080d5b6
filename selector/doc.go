/*
Package selector provides a small compiled-selector model together with an
offset-based matching primitive.

A compiled selector is an immutable, flat sequence of components in
subject-to-root order, with combinators interleaved. Components can be
addressed by offset, and matching may be anchored at any compound boundary.
This is what the invalidation engine needs: a dependency records a
(selector, offset) pair, and re-checks applicability by matching the
selector's tail both against the live element and against a snapshot
wrapper.

Matching runs under an explicit MatchingContext which carries the
visited-handling mode. Selector matching is never run against an element's
true visitedness; instead the caller picks a simulation mode and inspects
the RelevantLinkFound flag afterwards.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package selector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.selector'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.selector")
}
