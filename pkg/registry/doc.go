// Package registry is a type-keyed service locator holding at most one
// instance per type.
//
// Types are the keys: Register[*Foo] and Register[Foo] are different slots,
// and an interface type parameter keys on the interface, not on the dynamic
// type of the value.
//
// Reset clears every slot and then runs the reset listeners synchronously, in
// subscription order, before returning. Listeners typically re-register fresh
// singletons, so once Reset returns callers never observe the slots they own
// as empty.
//
// A process-wide registry is available through Global. Code that can take the
// registry as a parameter should do so; Global exists for the places that
// cannot, and ResetGlobal for test isolation.
package registry
