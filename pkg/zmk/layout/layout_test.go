package layout

import (
	"testing"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

func testLayout(t *testing.T) *Layout {
	t.Helper()
	l := New("corne", "Test", nil)
	l, err := l.Layers().Add("base")
	if err != nil {
		t.Fatalf("add base failed: %v", err)
	}
	l, err = l.Layers().Add("nav")
	if err != nil {
		t.Fatalf("add nav failed: %v", err)
	}
	return l
}

func TestAddDuplicateLayer(t *testing.T) {
	l := testLayout(t)
	if _, err := l.Layers().Add("base"); !zmkerrors.IsLayerExists(err) {
		t.Errorf("expected LayerAlreadyExists, got %v", err)
	}
}

func TestRemoveLayer(t *testing.T) {
	l := testLayout(t)

	l2, err := l.Layers().Remove("base")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if l2.Layers().Count() != 1 || l2.Layers().Names()[0] != "nav" {
		t.Errorf("layers after remove wrong: %v", l2.Layers().Names())
	}

	// the original layout is untouched
	if l.Layers().Count() != 2 {
		t.Error("remove mutated the original layout")
	}

	if _, err := l.Layers().Remove("ghost"); !zmkerrors.IsLayerNotFound(err) {
		t.Errorf("expected LayerNotFound, got %v", err)
	}
}

func TestMoveAndRename(t *testing.T) {
	l := testLayout(t)

	l2, err := l.Layers().Move("nav", 0)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	names := l2.Layers().Names()
	if names[0] != "nav" || names[1] != "base" {
		t.Errorf("move wrong: %v", names)
	}

	l3, err := l2.Layers().Rename("nav", "navigation")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if l3.Layers().Names()[0] != "navigation" {
		t.Errorf("rename wrong: %v", l3.Layers().Names())
	}

	if _, err := l3.Layers().Rename("base", "navigation"); !zmkerrors.IsLayerExists(err) {
		t.Errorf("rename onto existing name should fail, got %v", err)
	}
}

func TestCopyLayer(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")
	l, _ = proxy.Append(binding.MustParse("&kp A"))

	l2, err := l.Layers().Copy("base", "gaming")
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	src, _ := l2.Layers().Get("base")
	dst, _ := l2.Layers().Get("gaming")
	if dst.Len() != src.Len() {
		t.Fatalf("copy length wrong: %d vs %d", dst.Len(), src.Len())
	}

	// deep copy: changing the copy leaves the source alone
	l3, _ := dst.Set(0, binding.MustParse("&kp Z"))
	srcAfter, _ := l3.Layers().Get("base")
	b, _ := srcAfter.Get(0)
	if b.String() != "&kp A" {
		t.Error("copy shares storage with source layer")
	}
}

func TestReorder(t *testing.T) {
	l := testLayout(t)

	l2, err := l.Layers().Reorder([]string{"nav", "base"})
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	if l2.Layers().Names()[0] != "nav" {
		t.Errorf("reorder wrong: %v", l2.Layers().Names())
	}

	if _, err := l.Layers().Reorder([]string{"base"}); err == nil {
		t.Error("short reorder list should fail")
	}
	if _, err := l.Layers().Reorder([]string{"base", "base"}); err == nil {
		t.Error("duplicate reorder list should fail")
	}
	if _, err := l.Layers().Reorder([]string{"base", "ghost"}); err == nil {
		t.Error("unknown name in reorder list should fail")
	}
}

func TestSetAutoExtends(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")

	// setting at len+3 fills the gap with &trans
	l2, err := proxy.Set(3, binding.MustParse("&kp X"))
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}

	p2, _ := l2.Layers().Get("base")
	if p2.Len() != 4 {
		t.Fatalf("expected length 4, got %d", p2.Len())
	}
	for i := 0; i < 3; i++ {
		b, _ := p2.Get(i)
		if !b.IsTransparent() {
			t.Errorf("position %d should be &trans, got %q", i, b.String())
		}
	}
	last, _ := p2.Get(3)
	if last.String() != "&kp X" {
		t.Errorf("position 3 wrong: %q", last.String())
	}
}

func TestSetRange(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")
	l, _ = proxy.Fill(binding.Transparent(), 4)
	proxy, _ = l.Layers().Get("base")

	l2, err := proxy.SetRange(1, 3, []binding.Binding{
		binding.MustParse("&kp A"),
		binding.MustParse("&kp B"),
	})
	if err != nil {
		t.Fatalf("set range failed: %v", err)
	}
	p2, _ := l2.Layers().Get("base")
	b, _ := p2.Get(1)
	if b.String() != "&kp A" {
		t.Errorf("range start wrong: %q", b.String())
	}

	if _, err := proxy.SetRange(0, 2, []binding.Binding{binding.Transparent()}); err == nil {
		t.Error("length mismatch should fail")
	}
	if _, err := proxy.SetRange(2, 9, []binding.Binding{}); err == nil {
		t.Error("out-of-range end should fail")
	}
}

func TestInsertRemoveGet(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")
	l, _ = proxy.Append(binding.MustParse("&kp A"))
	proxy, _ = l.Layers().Get("base")
	l, _ = proxy.Insert(0, binding.MustParse("&kp Q"))
	proxy, _ = l.Layers().Get("base")

	b, err := proxy.Get(0)
	if err != nil || b.String() != "&kp Q" {
		t.Fatalf("insert/get wrong: %v %q", err, b.String())
	}

	if _, err := proxy.Get(9); !zmkerrors.IsIndexOutOfRange(err) {
		t.Errorf("expected IndexOutOfRange, got %v", err)
	}

	l2, err := proxy.Remove(0)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	p2, _ := l2.Layers().Get("base")
	if p2.Len() != 1 {
		t.Errorf("length after remove wrong: %d", p2.Len())
	}
}

func TestPadToAndDescribe(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")
	l, _ = proxy.Append(binding.MustParse("&kp A"))
	proxy, _ = l.Layers().Get("base")
	l, _ = proxy.PadTo(5, binding.Transparent())
	proxy, _ = l.Layers().Get("base")

	stats := proxy.Describe()
	if stats.Total != 5 || stats.Transparent != 4 {
		t.Errorf("stats wrong: %+v", stats)
	}
}

func TestBehaviorDefaults(t *testing.T) {
	l := testLayout(t)

	l2, err := l.Behaviors().AddHoldTap(model.HoldTap{Name: "hm"})
	if err != nil {
		t.Fatalf("add hold-tap failed: %v", err)
	}
	doc := l2.Document()
	ht := doc.HoldTaps[0]
	if ht.TappingTermMs == nil || *ht.TappingTermMs != 200 {
		t.Errorf("default tapping term not applied: %v", ht.TappingTermMs)
	}
	if len(ht.Bindings) != 2 {
		t.Errorf("default bindings not applied: %v", ht.Bindings)
	}

	if !l2.Behaviors().HasHoldTap("hm") {
		t.Error("HasHoldTap should find hm")
	}
	if l.Behaviors().HasHoldTap("hm") {
		t.Error("original layout gained a behavior")
	}
}

func TestAddComboValidatesPositions(t *testing.T) {
	l := testLayout(t)

	_, err := l.Behaviors().AddCombo(model.Combo{
		Name:         "bad",
		Binding:      binding.MustParse("&kp ESC"),
		KeyPositions: []int{999},
	})
	if err == nil {
		t.Fatal("expected key position error")
	}

	_, err = l.Behaviors().AddCombo(model.Combo{
		Name:         "bad_layer",
		Binding:      binding.MustParse("&kp ESC"),
		KeyPositions: []int{0, 1},
		Layers:       []int{9},
	})
	if err == nil {
		t.Fatal("expected layer index error")
	}

	l2, err := l.Behaviors().AddCombo(model.Combo{
		Name:         "ok",
		Binding:      binding.MustParse("&kp ESC"),
		KeyPositions: []int{0, 1},
		Layers:       []int{0},
	})
	if err != nil {
		t.Fatalf("valid combo rejected: %v", err)
	}
	if c := l2.Document().Combos[0]; c.TimeoutMs == nil || *c.TimeoutMs != 50 {
		t.Errorf("default timeout not applied: %v", c.TimeoutMs)
	}
}

func TestTapDanceBindingCount(t *testing.T) {
	l := testLayout(t)

	_, err := l.Behaviors().AddTapDance(model.TapDance{
		Name:     "td",
		Bindings: []binding.Binding{binding.MustParse("&kp A")},
	})
	if err == nil {
		t.Fatal("one binding should be rejected")
	}

	_, err = l.Behaviors().AddTapDance(model.TapDance{
		Name: "td",
		Bindings: []binding.Binding{
			binding.MustParse("&kp A"),
			binding.MustParse("&kp B"),
		},
	})
	if err != nil {
		t.Fatalf("two bindings rejected: %v", err)
	}
}

func TestValidationPipeline(t *testing.T) {
	l := testLayout(t)
	proxy, _ := l.Layers().Get("base")
	l, _ = proxy.Append(binding.MustParse("&kp A"))

	result := l.Validation().
		ValidateBindings().
		ValidateLayerReferences().
		ValidateKeyPositions(0).
		ValidateBehaviorReferences()
	if !result.IsValid() {
		t.Fatalf("valid layout reported errors: %v", result.Errors())
	}

	proxy, _ = l.Layers().Get("base")
	l2, _ := proxy.Append(binding.Binding{Value: "&made_up"})
	bad := l2.Validation().ValidateBindings()
	if bad.IsValid() {
		t.Error("unknown behavior should be an error")
	}
}

func TestValidationPipelineIsImmutable(t *testing.T) {
	l := testLayout(t)
	base := l.Validation()
	_ = base.ValidateBindings()
	if len(base.Errors()) != 0 {
		t.Error("pipeline step mutated its receiver")
	}
}

func TestCopyLineage(t *testing.T) {
	doc := model.New("corne", "Test")
	doc.EnsureUUID()
	l := FromDocument(doc, nil)

	copied := l.Copy()
	if copied.Document().ParentUUID != doc.UUID {
		t.Errorf("copy parentUuid wrong. expected=%q, got=%q", doc.UUID, copied.Document().ParentUUID)
	}
	if copied.Document().UUID == doc.UUID {
		t.Error("copy should get a fresh uuid")
	}
}
