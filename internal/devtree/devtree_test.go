package devtree

import (
	"testing"

	"github.com/dannyswat/vctree/model"
)

func TestParseStringifyRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"plain text", "foobar", "foobar"},
		{"element", "<paragraph>foo</paragraph>", "<paragraph>foo</paragraph>"},
		{"empty element", "<paragraph></paragraph>", "<paragraph></paragraph>"},
		{
			"attributed text",
			`<paragraph>fo<text bold="true">o</text></paragraph>`,
			`<paragraph>fo<text bold="true">o</text></paragraph>`,
		},
		{
			"sorted attributes",
			`<heading level="2" align="left">x</heading>`,
			`<heading align="left" level="2">x</heading>`,
		},
		{"merged text", "ab<text>cd</text>", "abcd"},
		{"nested", "<quote><paragraph>a</paragraph><paragraph>b</paragraph></quote>", "<quote><paragraph>a</paragraph><paragraph>b</paragraph></quote>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Parse(tt.markup)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got, err := Stringify(nodes)
			if err != nil {
				t.Fatalf("Stringify failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseAttributeValues(t *testing.T) {
	nodes, err := Parse(`<widget flag="true" size="3" label="hello"></widget>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}
	el, ok := nodes[0].(*model.Element)
	if !ok {
		t.Fatalf("Expected element, got %T", nodes[0])
	}
	if el.Name != "widget" {
		t.Errorf("Expected name 'widget', got %q", el.Name)
	}
	if v := el.Attrs.Get("flag"); v != true {
		t.Errorf("Expected flag true, got %#v", v)
	}
	if v := el.Attrs.Get("size"); v != float64(3) {
		t.Errorf("Expected size 3, got %#v", v)
	}
	if v := el.Attrs.Get("label"); v != "hello" {
		t.Errorf("Expected label 'hello', got %#v", v)
	}
}

func TestOffsetsCountRunes(t *testing.T) {
	doc := MustDocument("<paragraph>héllo</paragraph>")
	el, err := doc.ElementAt(model.DefaultRootName, model.Path{0})
	if err != nil {
		t.Fatalf("ElementAt failed: %v", err)
	}
	if el.MaxOffset() != 5 {
		t.Errorf("Expected max offset 5, got %d", el.MaxOffset())
	}
}

func TestLoadAppends(t *testing.T) {
	doc := model.NewDocument("main", "aside")
	if err := Load(doc, "aside", "<paragraph>a</paragraph>"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := Load(doc, "aside", "<paragraph>b</paragraph>"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := "<paragraph>a</paragraph><paragraph>b</paragraph>"
	if got := StringifyRoot(doc, "aside"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if err := Load(doc, "missing", "x"); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestHash(t *testing.T) {
	a := MustDocument("<paragraph>foo</paragraph>")
	b := MustDocument("<paragraph>foo</paragraph>")
	c := MustDocument("<paragraph>fo</paragraph>")

	if Hash(a) != Hash(b) {
		t.Error("Expected equal documents to hash equally")
	}
	if Hash(a) == Hash(c) {
		t.Error("Expected different documents to hash differently")
	}

	if err := b.Insert(model.NewPosition(model.GraveyardName, 0), []model.Node{model.NewText("x", nil)}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if Hash(a) != Hash(b) {
		t.Error("Expected graveyard content to be ignored")
	}

	if err := b.SetRootAttribute(model.DefaultRootName, "lang", "en"); err != nil {
		t.Fatalf("SetRootAttribute failed: %v", err)
	}
	if Hash(a) == Hash(b) {
		t.Error("Expected root attributes to change the hash")
	}
}
