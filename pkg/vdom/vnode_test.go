package vdom

import "testing"

func TestCreateElementBasic(t *testing.T) {
	node := Div(Class("card"), ID("main"))

	if node.Kind != KindElement {
		t.Fatalf("expected element kind, got %v", node.Kind)
	}
	if node.Tag != "div" {
		t.Errorf("expected tag div, got %q", node.Tag)
	}
	if node.Props["class"] != "card" {
		t.Errorf("expected class card, got %v", node.Props["class"])
	}
	if node.Props["id"] != "main" {
		t.Errorf("expected id main, got %v", node.Props["id"])
	}
}

func TestCreateElementChildren(t *testing.T) {
	node := Ul(
		Li(Text("a")),
		[]*VNode{Li(Text("b")), nil, Li(Text("c"))},
		"d",
	)

	if len(node.Children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(node.Children))
	}
	last := node.Children[3]
	if last.Kind != KindText || last.Text != "d" {
		t.Errorf("string arg should become a text child, got %+v", last)
	}
}

func TestCreateElementNilArgsIgnored(t *testing.T) {
	node := Div(nil, If(false, Span()), AttrIf(false, Disabled()))

	if len(node.Children) != 0 {
		t.Errorf("expected no children, got %d", len(node.Children))
	}
	if len(node.Props) != 0 {
		t.Errorf("empty Attr should not be stored, props=%v", node.Props)
	}
}

func TestCreateElementKey(t *testing.T) {
	node := Li(Key(42), Text("row"))

	if node.Key != "42" {
		t.Errorf("expected key \"42\", got %q", node.Key)
	}
	if _, ok := node.Props["key"]; ok {
		t.Error("key must not leak into props")
	}
}

func TestCreateElementEventHandler(t *testing.T) {
	clicked := false
	node := Button(OnClick(func() { clicked = true }), Text("go"))

	h, ok := node.Props["onclick"]
	if !ok {
		t.Fatal("onclick handler not stored")
	}
	h.(func())()
	if !clicked {
		t.Error("stored handler is not the one passed in")
	}

	if !node.IsInteractive() {
		t.Error("node with handler should be interactive")
	}
	if Div().IsInteractive() {
		t.Error("bare div should not be interactive")
	}
}

func TestComponentRendersInline(t *testing.T) {
	badge := Func(func() *VNode {
		return Span(Class("badge"), Text("3"))
	})

	node := Div(badge)

	if len(node.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(node.Children))
	}
	if node.Children[0].Tag != "span" {
		t.Errorf("component should render in place, got tag %q", node.Children[0].Tag)
	}
}

func TestClassesMerge(t *testing.T) {
	a := Classes("base", []string{"x", ""}, map[string]bool{"active": true, "off": false})

	got := a.Value.(string)
	// Map order is unspecified; check membership instead of exact string.
	for _, want := range []string{"base", "x", "active"} {
		found := false
		for _, c := range splitClasses(got) {
			if c == want {
				found = true
			}
		}
		if !found {
			t.Errorf("class %q missing from %q", want, got)
		}
	}
	for _, c := range splitClasses(got) {
		if c == "off" || c == "" {
			t.Errorf("unexpected class %q in %q", c, got)
		}
	}
}

func splitClasses(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' {
			if cur != "" {
				out = append(out, cur)
			}
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("img") || !IsVoidElement("input") || !IsVoidElement("br") {
		t.Error("img, input, br are void elements")
	}
	if IsVoidElement("div") {
		t.Error("div is not a void element")
	}
}
