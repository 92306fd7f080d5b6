/*
Package invalidation decides which elements of a styled tree need their
style recomputed after a mutation, without restyling the whole document.

Overview

Two kinds of change are handled. Element mutations (attribute changes, UI
state flips) are processed by a TreeStyleInvalidator, which consults an
InvalidationMap of selector dependencies and re-matches affected selectors
against both the live element and its pre-mutation snapshot. Stylesheet
mutations (sheets added, removed or toggled) accumulate in a
StylesheetInvalidationSet, which is flushed over the document tree before
the next style traversal.

Both paths deposit restyle hints on styled nodes and raise the
dirty-descendants marker on ancestors, so a subsequent style traversal
finds its work by walking marked paths only.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package invalidation

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.invalidation'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.invalidation")
}
