package cssom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/invalidation"
)

// ToggleableSheet is a stylesheet whose enabled flag the stylist may flip.
type ToggleableSheet interface {
	invalidation.Stylesheet
	SetEnabled(enabled bool)
}

// Stylist owns the stylesheets of one document and the invalidation state
// derived from them: the invalidation map consulted for element mutations,
// and the pending set of stylesheet-change invalidations.
//
// A stylist is not safe for concurrent use; document mutation and
// invalidation are single-threaded per document (the usual frame loop
// discipline).
type Stylist struct {
	device     invalidation.Device
	quirks     restyle.QuirksMode
	sheets     []invalidation.Stylesheet
	docMap     *invalidation.InvalidationMap
	mapDirty   bool
	pending    *invalidation.StylesheetInvalidationSet
	generation uint64
}

// NewStylist creates a stylist for a device and the document's quirks
// mode.
func NewStylist(device invalidation.Device, quirks restyle.QuirksMode) *Stylist {
	return &Stylist{
		device:  device,
		quirks:  quirks,
		docMap:  invalidation.NewInvalidationMap(),
		pending: invalidation.NewStylesheetInvalidationSet(),
	}
}

var _ invalidation.MapProvider = &Stylist{}

// QuirksMode is part of interface invalidation.MapProvider.
func (st *Stylist) QuirksMode() restyle.QuirksMode {
	return st.quirks
}

// EachInvalidationMap is part of interface invalidation.MapProvider. The
// document map is rebuilt lazily after stylesheet changes.
func (st *Stylist) EachInvalidationMap(el *styledtree.StyNode, f func(m *invalidation.InvalidationMap)) {
	if st.mapDirty {
		st.rebuildInvalidationMap()
	}
	f(st.docMap)
}

// Generation returns the stylesheet generation. It increments on every
// stylesheet change; cached style data keyed to an older generation is
// stale.
func (st *Stylist) Generation() uint64 {
	return st.generation
}

// Stylesheets returns the current stylesheet list in cascade order.
func (st *Stylist) Stylesheets() []invalidation.Stylesheet {
	return st.sheets
}

// AppendStylesheet adds a sheet at the end of the cascade and schedules
// the invalidations its rules require.
func (st *Stylist) AppendStylesheet(sheet invalidation.Stylesheet) {
	st.sheets = append(st.sheets, sheet)
	st.pending.RulesChanged(st.device, sheet)
	st.noteChange()
}

// RemoveStylesheet removes a sheet. The invalidations are collected while
// the sheet still reports effective, removal needs the same keys as
// addition.
func (st *Stylist) RemoveStylesheet(sheet invalidation.Stylesheet) {
	for i, s := range st.sheets {
		if s == sheet {
			st.pending.RulesChanged(st.device, sheet)
			st.sheets = append(st.sheets[:i], st.sheets[i+1:]...)
			st.noteChange()
			return
		}
	}
}

// ToggleStylesheet enables or disables a sheet in place. Collection runs
// while the sheet is enabled; a disabled sheet reports ineffective and
// would contribute no keys.
func (st *Stylist) ToggleStylesheet(sheet ToggleableSheet, enabled bool) {
	if sheet.Enabled() == enabled {
		return
	}
	if enabled {
		sheet.SetEnabled(true)
		st.pending.RulesChanged(st.device, sheet)
	} else {
		st.pending.RulesChanged(st.device, sheet)
		sheet.SetEnabled(false)
	}
	st.noteChange()
}

func (st *Stylist) noteChange() {
	st.mapDirty = true
	st.generation++
	tracer().Debugf("stylesheet change, generation now %d", st.generation)
}

// HasPendingInvalidations checks whether a flush would do anything.
func (st *Stylist) HasPendingInvalidations() bool {
	return !st.pending.IsEmpty()
}

// FlushStylesheetInvalidations pushes pending stylesheet-change
// invalidations onto the document tree. It reports whether any element
// was invalidated.
func (st *Stylist) FlushStylesheetInvalidations(root *styledtree.StyNode,
	snapshots *styledtree.SnapshotMap) bool {
	//
	return st.pending.Flush(root, snapshots, st.quirks)
}

// InvalidateForMutation runs the element-mutation invalidation pass for
// one mutated element, using the snapshots of the current batch. It
// reports whether any element was invalidated.
func (st *Stylist) InvalidateForMutation(el *styledtree.StyNode,
	snapshots *styledtree.SnapshotMap) bool {
	//
	proc := invalidation.NewStateAndAttrProcessor(st, snapshots)
	return invalidation.NewTreeStyleInvalidator(el, snapshots, st.quirks, proc).Invalidate()
}

// rebuildInvalidationMap re-derives the document invalidation map from the
// effective rules of all sheets.
func (st *Stylist) rebuildInvalidationMap() {
	st.docMap.Clear()
	for _, sheet := range st.sheets {
		if !sheet.EffectiveForDevice(st.device) {
			continue
		}
		sheet.EachEffectiveRule(st.device, func(r invalidation.Rule) {
			if r.Kind() != invalidation.RuleStyle {
				return
			}
			if sels := r.Selectors(); sels != nil {
				st.docMap.NoteSelectorList(sels)
			}
		})
	}
	st.mapDirty = false
	tracer().Infof("rebuilt invalidation map, %d dependencies", st.docMap.Len())
}
