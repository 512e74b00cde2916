package hook

import "testing"

func TestRegisterRejectsUnknownPhase(t *testing.T) {
	r := New()
	err := r.Register(Phase("not_a_phase"), EmptyFilter, func() error { return nil }, "test:1")
	if err == nil {
		t.Fatal("expected UnknownPhase error")
	}
}

func TestRegisterRejectsInvalidFilter(t *testing.T) {
	r := New()
	err := r.Register(ReadNewNode, "bad filter", func(any, int) error { return nil }, "test:1")
	if err == nil {
		t.Fatal("expected InvalidFilter error for a filter containing whitespace")
	}
}

func TestRegisterRejectsNonCallable(t *testing.T) {
	r := New()
	err := r.Register(OnSetup, EmptyFilter, "not a function", "test:1")
	if err == nil {
		t.Fatal("expected InvalidHook error for a non-callable impl")
	}
}

func TestConvertNodeToStringDuplicateFilterFails(t *testing.T) {
	r := New()
	impl := func() error { return nil }
	if err := r.Register(ConvertNodeToString, "item", impl, "test:1"); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := r.Register(ConvertNodeToString, "item", impl, "test:2"); err == nil {
		t.Fatal("expected DuplicateConverter error for a second converter on the same filter")
	}
}

func TestConvertNodeToStringAllowsDistinctFilters(t *testing.T) {
	r := New()
	impl := func() error { return nil }
	if err := r.Register(ConvertNodeToString, "item", impl, "test:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(ConvertNodeToString, EmptyFilter, impl, "test:2"); err != nil {
		t.Fatalf("empty filter should be independent of the 'item' filter: %v", err)
	}
}

func TestDispatchPreservesRegistrationOrder(t *testing.T) {
	r := New()
	var order []string
	record := func(name string) func() error {
		return func() error {
			order = append(order, name)
			return nil
		}
	}
	if err := r.Register(OnSetup, EmptyFilter, record("empty-1"), "a"); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(OnSetup, EmptyFilter, record("empty-2"), "b"); err != nil {
		t.Fatal(err)
	}

	for _, rec := range r.Dispatch(OnSetup, EmptyFilter) {
		fn := rec.Impl.(func() error)
		if err := fn(); err != nil {
			t.Fatal(err)
		}
	}
	if len(order) != 2 || order[0] != "empty-1" || order[1] != "empty-2" {
		t.Fatalf("expected registration order to be preserved, got %v", order)
	}
}

func TestDispatchSpecificFilterPrecedesEmptyFilter(t *testing.T) {
	r := New()
	specific := func() error { return nil }
	empty := func() error { return nil }
	if err := r.Register(ReadNewNode, EmptyFilter, empty, "empty-site"); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(ReadNewNode, "item", specific, "specific-site"); err != nil {
		t.Fatal(err)
	}

	records := r.Dispatch(ReadNewNode, "item")
	if len(records) != 2 {
		t.Fatalf("expected 2 hooks for call 'item', got %d", len(records))
	}
	if records[0].Source != "specific-site" || records[1].Source != "empty-site" {
		t.Fatalf("expected specific filter before empty filter, got %+v", records)
	}
}
