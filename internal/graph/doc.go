// Package graph holds the compiler-side graph a model is loaded into.
//
// A Function owns named variables (graph inputs), constants (weights),
// operator nodes and output (Save) nodes. Every node is immutable once
// created. Loading into a Function is transactional: callers take a Mark
// before mutating it and Rollback to that mark when a load fails, which
// removes every node created since and releases their tensors.
package graph
