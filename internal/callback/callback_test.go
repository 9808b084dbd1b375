package callback

import "testing"

type fakeResolver struct {
	handle *NativeMethodHandle
}

func (f *fakeResolver) ResolveOrPanic(className, methodDescriptor string) *NativeMethodHandle {
	return f.handle
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	r := &fakeResolver{handle: &NativeMethodHandle{CodePtr: 0xABCD}}
	token := Register(r)
	if token == 0 {
		t.Fatalf("Register returned the reserved zero token")
	}
	if got := resolverFor(token); got != r {
		t.Fatalf("resolverFor(%d) = %v, want %v", token, got, r)
	}

	Unregister(token)
	if got := resolverFor(token); got != nil {
		t.Fatalf("resolverFor(%d) after Unregister = %v, want nil", token, got)
	}
}

func TestResolverForUnknownTokenIsNil(t *testing.T) {
	if got := resolverFor(0); got != nil {
		t.Fatalf("resolverFor(0) = %v, want nil (0 is reserved)", got)
	}
	if got := resolverFor(1 << 20); got != nil {
		t.Fatalf("resolverFor(huge) = %v, want nil", got)
	}
}

// TestDispatchResolvesAndReturnsHandlePointer exercises dispatch directly
// (bypassing the assembly entry stub) with NUL-terminated C strings, the
// same shape the materializer's trampolines lay out in their trailing
// string table.
func TestDispatchResolvesAndReturnsHandlePointer(t *testing.T) {
	handle := &NativeMethodHandle{CodePtr: 0x1122334455667788}
	var gotClass, gotDescriptor string
	r := resolverFunc(func(className, descriptor string) *NativeMethodHandle {
		gotClass, gotDescriptor = className, descriptor
		return handle
	})
	token := Register(r)
	defer Unregister(token)

	classBytes := append([]byte("A"), 0)
	descriptorBytes := append([]byte("m"), 0)

	got := dispatch(token, &classBytes[0], &descriptorBytes[0])
	if got == 0 {
		t.Fatalf("dispatch returned a nil handle pointer")
	}
	if gotClass != "A" || gotDescriptor != "m" {
		t.Fatalf("dispatch decoded (%q, %q), want (%q, %q)", gotClass, gotDescriptor, "A", "m")
	}
}

func TestDispatchInvalidTokenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("dispatch did not panic on an invalid token")
		}
	}()
	classBytes := []byte{0}
	descriptorBytes := []byte{0}
	dispatch(0, &classBytes[0], &descriptorBytes[0])
}

// resolverFunc adapts a plain function to Resolver for tests that don't
// need a stateful fake.
type resolverFunc func(className, methodDescriptor string) *NativeMethodHandle

func (f resolverFunc) ResolveOrPanic(className, methodDescriptor string) *NativeMethodHandle {
	return f(className, methodDescriptor)
}
