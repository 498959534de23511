// Package types defines the catalog model (object references, catalog items,
// bucket items, insights), the options consumed by catalog factories, the
// identifier mappings, the snapshot store interface, and the standard errors
// shared by every backend.
//
// All values are immutable once constructed. Methods that "modify" a value
// return a new copy.
package types
