package registry

import (
	"reflect"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
)

// Register stores instance in the slot for T. It fails with
// ErrAlreadyRegistered if a different instance holds the slot; registering
// the same instance again is a no-op.
func Register[T any](r *Registry, instance T) error {
	if isNil(instance) {
		return cerr.Wrapf(relay_err.ErrNilInstance, "register %s", keyName(typeOf[T]()))
	}
	return r.store(typeOf[T](), instance, false)
}

// Overwrite stores instance in the slot for T, replacing whatever was there.
func Overwrite[T any](r *Registry, instance T) error {
	if isNil(instance) {
		return cerr.Wrapf(relay_err.ErrNilInstance, "overwrite %s", keyName(typeOf[T]()))
	}
	return r.store(typeOf[T](), instance, true)
}

// RegisterSingleton returns the instance registered for T, creating and
// registering one with factory when the slot is empty.
func RegisterSingleton[T any](r *Registry, factory func() (T, error)) (T, error) {
	if existing, ok := Resolve[T](r); ok {
		return existing, nil
	}
	instance, err := factory()
	if err != nil {
		var zero T
		return zero, cerr.Wrapf(err, "create %s", keyName(typeOf[T]()))
	}
	if err := Register(r, instance); err != nil {
		// lost a race with another registration; hand back the winner
		if existing, ok := Resolve[T](r); ok && cerr.Is(err, relay_err.ErrAlreadyRegistered) {
			return existing, nil
		}
		var zero T
		return zero, err
	}
	return instance, nil
}

// Resolve returns the instance registered for T. A miss is reported through
// the boolean, never as an error.
func Resolve[T any](r *Registry) (T, bool) {
	v, ok := r.load(typeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustResolve is Resolve for wiring code that treats a miss as a bug.
func MustResolve[T any](r *Registry) T {
	v, ok := Resolve[T](r)
	if !ok {
		panic(cerr.Wrapf(relay_err.ErrNotRegistered, "resolve %s", keyName(typeOf[T]())))
	}
	return v
}

// IsRegistered reports whether the slot for T is occupied.
func IsRegistered[T any](r *Registry) bool {
	_, ok := r.load(typeOf[T]())
	return ok
}

// Unregister empties the slot for T and reports whether it was occupied.
func Unregister[T any](r *Registry) bool {
	return r.remove(typeOf[T](), nil)
}

// UnregisterInstance empties the slot for T only while it still holds instance.
func UnregisterInstance[T any](r *Registry, instance T) bool {
	return r.remove(typeOf[T](), func(existing any) bool {
		return sameInstance(existing, instance)
	})
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func keyName(t reflect.Type) string {
	return t.String()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// sameInstance compares identities without panicking on uncomparable values.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return ta == tb
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}
