// Package dom provides the mutable display tree the reconciler and window
// render into.
//
// The tree exposes the minimal contract the core depends on: create a node,
// insert-before, remove-child, and traverse via next-sibling and parent.
// Nothing above that contract is required of a render target, so the same
// tree serves both tests and the dev server.
//
// A Document owns a root node and can observe mutations anywhere in its
// tree. Each mutation produces a Patch record; the dev server streams these
// to thin clients so they can mirror the tree remotely.
package dom
