package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// Visit is called once per node of a pre-order walk, with the node's depth
// relative to the walk's start node (the start node has depth 0). Returning
// false prunes the node's subtree.
type Visit[T comparable] func(n *Node[T], depth int) (descend bool)

// Overflow is called instead of Visit for nodes whose depth would exceed a
// walk's depth limit. The node's subtree is not descended into.
type Overflow[T comparable] func(n *Node[T])

// Walk performs a pre-order walk over the subtree rooted at start, on an
// explicit stack. The walk visits start itself and every descendant whose
// ancestors all allowed descending. Nodes deeper than limit are handed to
// overflow (if non-nil) and never visited.
//
// Children are visited in order; the walk is synchronous and complete when
// Walk returns.
func Walk[T comparable](start *Node[T], limit int, visit Visit[T], overflow Overflow[T]) {
	if start == nil || visit == nil {
		return
	}
	type frame struct {
		node  *Node[T]
		depth int
	}
	stack := []frame{{start, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if limit >= 0 && f.depth > limit {
			tracer().Infof("tree walk depth limit %d exceeded at %v", limit, f.node)
			if overflow != nil {
				overflow(f.node)
			}
			continue
		}
		if !visit(f.node, f.depth) {
			continue
		}
		children := f.node.Children()
		for i := len(children) - 1; i >= 0; i-- { // reversed, so children pop in order
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}
