/*
Package tree provides the generic mutable tree the styled document tree is
built on, together with a bounded, iterative pre-order walk.

The invalidation passes of the style engine are synchronous and assume
exclusive access to each node's payload for the duration of a walk. Walks
therefore run on an explicit stack with an enforced depth limit: on
overflow a hook is called for the offending node instead of descending
further, so a degenerate tree can never exhaust the native stack.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.tree'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.tree")
}
