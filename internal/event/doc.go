// Package event provides the observer registration used to connect host
// editor events to the indent guide controller.
//
// Topics use dot notation. A subscription pattern may use "*" to match
// exactly one segment and "**" to match any number of trailing segments:
//
//	editor.*          matches editor.selection, not editor.selection.changed
//	editor.**         matches editor.selection.changed and editor.active.changed
//	**                matches everything
//
// Delivery is synchronous: Publish returns after every matching handler has
// run in the publishing goroutine. Hosts publish from their UI loop, so
// handlers never run concurrently with each other.
//
// Subscriptions implement host.Disposable; collect them in a host.Bundle to
// release them together.
package event
