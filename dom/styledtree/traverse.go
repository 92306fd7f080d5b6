package styledtree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/tree"
)

// EachNeedingRestyle walks the dirty region of a styled tree and calls f
// for every element carrying a restyle hint. This is the entry point for
// a cascade pass consuming the hints the invalidation walks have stored.
//
// The walk is pruned twice over: subtrees without the dirty-descendants
// marker contain no hinted node and are skipped, and a subtree hint
// already covers every node below it, so its interior is skipped as well.
// Unstyled nodes never carry hints.
func EachNeedingRestyle(root *StyNode, f func(sn *StyNode, hint restyle.RestyleHint)) {
	if root == nil {
		return
	}
	tree.Walk(&root.Node, -1, func(n *tree.Node[*StyNode], depth int) bool {
		sn := Node(n)
		if !sn.HasStyleData() {
			return false
		}
		hint := sn.styleData.Hint
		if !hint.IsEmpty() {
			f(sn, hint)
		}
		if hint.ContainsDescendants() {
			return false
		}
		return sn.HasDirtyDescendants()
	}, nil)
}
