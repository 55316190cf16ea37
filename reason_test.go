package verdict

import (
	"errors"
	"testing"
)

func TestCollectorRecordFailure(t *testing.T) {
	c := NewCollector()
	c.RecordFailure("post", "edit?")
	c.RecordFailure("post", "edit?") // deduped
	c.RecordFailure("post", "view?")

	frame := c.CurrentFrame()
	if len(frame) != 2 {
		t.Fatalf("expected 2 deduped reasons, got %d", len(frame))
	}
	if frame[0].Rule != "edit?" || frame[1].Rule != "view?" {
		t.Fatalf("unexpected frame order: %v", frame)
	}
}

func TestWithFrameSuccessDiscardsReasons(t *testing.T) {
	c := NewCollector()
	ok, node, err := c.WithFrame("post", "view?", func() (bool, error) {
		c.RecordFailure("post", "edit?")
		return true, nil
	})
	if err != nil || !ok {
		t.Fatalf("unexpected outcome: %v %v", ok, err)
	}
	if node != nil {
		t.Fatal("passing frame must produce no node")
	}
	if len(c.CurrentFrame()) != 0 {
		t.Fatal("passing frame must not leak reasons into the parent")
	}
}

func TestWithFrameFailureMergesNode(t *testing.T) {
	c := NewCollector()
	ok, node, err := c.WithFrame("post", "view?", func() (bool, error) {
		c.RecordFailure("post", "edit?")
		return false, nil
	})
	if err != nil || ok {
		t.Fatalf("unexpected outcome: %v %v", ok, err)
	}
	if node == nil {
		t.Fatal("failing frame must produce a node")
	}
	if node.Policy != "post" || node.Rule != "view?" {
		t.Fatalf("unexpected node identity: %s/%s", node.Policy, node.Rule)
	}
	if len(node.Children) != 1 || node.Children[0].Rule != "edit?" {
		t.Fatalf("unexpected children: %v", node.Children)
	}

	frame := c.CurrentFrame()
	if len(frame) != 1 || frame[0] != node {
		t.Fatal("node must be merged into the enclosing frame")
	}
}

func TestWithFramePopsOnError(t *testing.T) {
	c := NewCollector()
	boom := errors.New("boom")
	_, node, err := c.WithFrame("post", "view?", func() (bool, error) {
		c.RecordFailure("post", "edit?")
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
	if node != nil {
		t.Fatal("errored frame must not produce a node")
	}
	if len(c.frames) != 1 {
		t.Fatalf("frame must be popped on error, %d frames remain", len(c.frames))
	}
	if len(c.CurrentFrame()) != 0 {
		t.Fatal("errored frame must not leak reasons")
	}
}

func TestWithFrameNesting(t *testing.T) {
	c := NewCollector()
	_, outer, err := c.WithFrame("post", "view?", func() (bool, error) {
		_, inner, err := c.WithFrame("author", "active?", func() (bool, error) {
			return false, nil
		})
		if err != nil {
			return false, err
		}
		if inner == nil {
			t.Fatal("inner failure must produce a node")
		}
		return false, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(outer.Children) != 1 {
		t.Fatalf("expected inner node as child, got %v", outer.Children)
	}
	child := outer.Children[0]
	if child.Policy != "author" || child.Rule != "active?" {
		t.Fatalf("unexpected child: %s/%s", child.Policy, child.Rule)
	}
}

func TestReasonWalkDedup(t *testing.T) {
	// The same (policy, rule) leaf reachable through two branches is
	// visited once.
	root := &Reason{Policy: "post", Rule: "view?", Children: []*Reason{
		{Policy: "post", Rule: "edit?", Children: []*Reason{
			{Policy: "author", Rule: "active?"},
		}},
		{Policy: "author", Rule: "active?"},
	}}

	var visited [][2]string
	root.walk(func(policy, rule string) {
		visited = append(visited, [2]string{policy, rule})
	})

	want := [][2]string{
		{"post", "view?"},
		{"post", "edit?"},
		{"author", "active?"},
	}
	if len(visited) != len(want) {
		t.Fatalf("expected %d visits, got %v", len(want), visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visit %d: expected %v, got %v", i, want[i], visited[i])
		}
	}
}

func TestResultDetailsGroupsByPolicy(t *testing.T) {
	res := &Result{
		Value: false,
		Reasons: &Reason{Policy: "post", Rule: "view?", Children: []*Reason{
			{Policy: "author", Rule: "active?"},
			{Policy: "post", Rule: "edit?"},
		}},
	}
	details := res.Details()
	if got := details["post"]; len(got) != 2 || got[0] != "view?" || got[1] != "edit?" {
		t.Fatalf("unexpected post details: %v", got)
	}
	if got := details["author"]; len(got) != 1 || got[0] != "active?" {
		t.Fatalf("unexpected author details: %v", got)
	}
}
