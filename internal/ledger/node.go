package ledger

// noReferrer marks a node that nobody referred (a root of the forest).
const noReferrer = -1

// node is one user in the arena. Edges are stored as arena indices so the
// back-reference to the referrer never owns anything.
type node struct {
	key       string
	referrals []int // arena indices, in insertion order
	referrer  int   // arena index or noReferrer
}

func newNode(key string) node {
	return node{key: key, referrer: noReferrer}
}

// hasReferrer reports whether someone already referred this node.
func (n *node) hasReferrer() bool {
	return n.referrer != noReferrer
}
