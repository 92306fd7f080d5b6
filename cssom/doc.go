/*
Package cssom manages the stylesheets of a styled document.

Overview

The central type is the Stylist: it owns the document's list of
stylesheets, derives the invalidation map the mutation collector consults,
and accumulates stylesheet-change invalidations for the next flush. CSS
handling is de-coupled by interfaces defined in package invalidation;
a concrete implementation backed by the douceur CSS parser lives in
sub-package douceuradapter.

A Device describes the rendering target, media type and viewport, and
answers media queries, so conditional rules can be scoped out before they
cause any invalidation.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cssom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.cssom")
}
