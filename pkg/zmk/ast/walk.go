package ast

// Visitor receives one callback per AST element kind during a walk.
// Returning false from VisitNode prunes that node's subtree.
type Visitor interface {
	VisitNode(n *Node) bool
	VisitProperty(n *Node, p *Property)
	VisitComment(c *Comment)
	VisitConditional(c *Conditional)
}

// Walk traverses the document in source order, invoking the visitor.
func Walk(d *Document, v Visitor) {
	for _, c := range d.Comments {
		v.VisitComment(c)
	}
	for _, c := range d.Conditionals {
		v.VisitConditional(c)
	}
	for _, n := range d.Nodes {
		walkNode(n, v)
	}
}

func walkNode(n *Node, v Visitor) {
	if !v.VisitNode(n) {
		return
	}
	for _, c := range n.Comments {
		v.VisitComment(c)
	}
	for _, c := range n.Conditionals {
		v.VisitConditional(c)
	}
	for _, p := range n.Properties {
		v.VisitProperty(n, p)
	}
	for _, child := range n.Children {
		walkNode(child, v)
	}
}

// FindNodesWhere returns every node in the document, in source order, for
// which the predicate holds.
func FindNodesWhere(d *Document, pred func(*Node) bool) []*Node {
	var found []*Node
	for _, n := range d.Nodes {
		findNodes(n, pred, &found)
	}
	return found
}

func findNodes(n *Node, pred func(*Node) bool, found *[]*Node) {
	if pred(n) {
		*found = append(*found, n)
	}
	for _, child := range n.Children {
		findNodes(child, pred, found)
	}
}

// FindNodesNamed returns every node with the given name.
func FindNodesNamed(d *Document, name string) []*Node {
	return FindNodesWhere(d, func(n *Node) bool { return n.Name == name })
}

// FindNodesCompatible returns every node whose 'compatible' property equals
// the given string.
func FindNodesCompatible(d *Document, compatible string) []*Node {
	return FindNodesWhere(d, func(n *Node) bool { return n.Compatible() == compatible })
}
