package verdict

import "fmt"

// Reason is one node in a denial explanation tree. A leaf identifies the
// (policy, rule) pair that returned false; an internal node additionally
// carries the nested checks its rule depended on. The same (policy, rule)
// pair never appears twice among the children of one node.
type Reason struct {
	Policy   string    `json:"policy"`
	Rule     string    `json:"rule"`
	Children []*Reason `json:"children,omitempty"`
}

// walk visits the node and its descendants depth-first, skipping
// (policy, rule) pairs already visited on this traversal.
func (n *Reason) walk(visit func(policy, rule string)) {
	seen := make(map[[2]string]struct{})
	n.walkDedup(seen, visit)
}

func (n *Reason) walkDedup(seen map[[2]string]struct{}, visit func(policy, rule string)) {
	key := [2]string{n.Policy, n.Rule}
	if _, ok := seen[key]; !ok {
		seen[key] = struct{}{}
		visit(n.Policy, n.Rule)
	}
	for _, child := range n.Children {
		child.walkDedup(seen, visit)
	}
}

func failureMessage(policy, rule string) string {
	return fmt.Sprintf("You are not authorized to %s this %s", rule, policy)
}

// Collector accumulates failure reasons during one evaluation scope. It
// keeps a stack of frames: every rule execution runs inside its own frame,
// and a frame's contents fold into the enclosing frame only when the rule
// failed. Frames are always popped on exit, so an early error never leaves
// one dangling.
//
// A Collector belongs to exactly one Session and is not safe for use from
// multiple goroutines.
type Collector struct {
	frames [][]*Reason
}

// NewCollector creates a collector with an open root frame.
func NewCollector() *Collector {
	return &Collector{frames: make([][]*Reason, 1)}
}

// RecordFailure appends a leaf (policy, rule) reason to the current frame.
func (c *Collector) RecordFailure(policy, rule string) {
	c.add(&Reason{Policy: policy, Rule: rule})
}

// CurrentFrame returns the reasons collected so far in the current frame.
func (c *Collector) CurrentFrame() []*Reason {
	return c.frames[len(c.frames)-1]
}

// WithFrame runs fn for the named rule inside a fresh frame. The frame is
// popped when fn returns, success or failure. If fn reports failure, the
// frame's reasons become the children of a single (policy, rule) node that
// is merged into the enclosing frame and returned; otherwise node is nil.
func (c *Collector) WithFrame(policy, rule string, fn func() (bool, error)) (ok bool, node *Reason, err error) {
	c.frames = append(c.frames, nil)
	defer func() {
		children := c.frames[len(c.frames)-1]
		c.frames = c.frames[:len(c.frames)-1]
		if err != nil || ok {
			return
		}
		node = &Reason{Policy: policy, Rule: rule, Children: children}
		c.add(node)
	}()
	ok, err = fn()
	return ok, node, err
}

// add merges a node into the current frame, dropping it if a node with the
// same (policy, rule) pair is already present at this path.
func (c *Collector) add(node *Reason) {
	top := len(c.frames) - 1
	for _, existing := range c.frames[top] {
		if existing.Policy == node.Policy && existing.Rule == node.Rule {
			return
		}
	}
	c.frames[top] = append(c.frames[top], node)
}
