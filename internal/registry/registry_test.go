package registry

import (
	"testing"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// mockDecoder implements Decoder for testing.
type mockDecoder struct {
	name string
}

func (m *mockDecoder) Decode(src *binary.Source, env *types.Env) (Result, error) {
	return nil, nil
}

func TestRegisterAndGet(t *testing.T) {
	// Use a format that's unlikely to conflict with real registrations
	format := types.Format(999)
	Register(format, &mockDecoder{name: "test"})

	got := Get(format)
	if got == nil {
		t.Fatal("Get() returned nil for registered format")
	}

	md, ok := got.(*mockDecoder)
	if !ok {
		t.Fatal("Get() returned wrong decoder type")
	}
	if md.name != "test" {
		t.Errorf("decoder name = %q, want %q", md.name, "test")
	}
}

func TestGet_Unregistered(t *testing.T) {
	if got := Get(types.Format(998)); got != nil {
		t.Errorf("Get() = %v for unregistered format, want nil", got)
	}
}

func TestRegister_Overwrites(t *testing.T) {
	format := types.Format(997)
	Register(format, &mockDecoder{name: "first"})
	Register(format, &mockDecoder{name: "second"})

	md, ok := Get(format).(*mockDecoder)
	if !ok {
		t.Fatal("Get() returned wrong decoder type")
	}
	if md.name != "second" {
		t.Errorf("decoder name = %q, want %q (should be overwritten)", md.name, "second")
	}
}
