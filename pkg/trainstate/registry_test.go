package trainstate

import (
	"reflect"
	"testing"
)

func TestRegisterReportsNewLabelsOnce(t *testing.T) {
	registry := NewRegistry()

	if !registry.Register("Regional") {
		t.Error("first Regional should be new")
	}
	if registry.Register("Regional") {
		t.Error("second Regional should not be new")
	}
	if !registry.Register("Freight") {
		t.Error("first Freight should be new")
	}
}

func TestRegisterIgnoresEmptyLabel(t *testing.T) {
	registry := NewRegistry()

	if registry.Register("") {
		t.Error("empty label should be ignored")
	}
	if len(registry.Sorted()) != 0 {
		t.Errorf("registry should stay empty, got %v", registry.Sorted())
	}
}

func TestSortedIsDeduplicatedAndOrdered(t *testing.T) {
	registry := NewRegistry()

	registry.Register("Regional")
	registry.Register("Freight")
	registry.Register("Arlanda Express")
	registry.Register("Regional")

	expected := []string{"Arlanda Express", "Freight", "Regional"}
	if sorted := registry.Sorted(); !reflect.DeepEqual(sorted, expected) {
		t.Errorf("expected %v, got %v", expected, sorted)
	}
}
