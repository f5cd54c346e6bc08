package ast

// FindNodeAt returns the innermost node whose span contains off. Children
// are visited before their container, so the deepest match wins; the root
// span covers the whole source and acts as the fallback. Returns nil only
// when off is outside every span.
func FindNodeAt(root Node, off int) Node {
	n, _ := findAt(root, nil, off)
	return n
}

// FindParentAt returns the container the node at off is attached to. When
// only the root matches, the root itself is returned.
func FindParentAt(root Node, off int) Node {
	n, parent := findAt(root, nil, off)
	if n == nil {
		return nil
	}
	if parent == nil {
		return n
	}
	return parent
}

func findAt(n, parent Node, off int) (hit, attachedTo Node) {
	if b := BodyOf(n); b != nil {
		for _, c := range b.Children {
			if hit, p := findAt(c, n, off); hit != nil {
				return hit, p
			}
		}
	}
	if n.NodeSpan().Contains(off) {
		return n, parent
	}
	return nil, nil
}
