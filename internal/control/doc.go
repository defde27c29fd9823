// Package control is the dynamics-abstraction core of the planning toolkit.
//
// A control manifold models how a control input, applied for a duration,
// transforms a state of its bound state manifold:
//
//   - [Manifold]: capability contract for a control space (control lifecycle,
//     sampling, propagation)
//   - [Base]: embeddable default implementation handling naming, the bound
//     state manifold, and the optional propagation override
//   - [Compound]: ordered composition of heterogeneous sub-manifolds for
//     hybrid systems
//   - [Sampler]: generator of control values bound to one manifold
//
// Every control value is owned by the manifold that allocated it; only that
// manifold (or a compound recursively delegating to it) may free, copy,
// compare, or null it. Manifold names are process-unique, enforced through a
// shared registry.Names injected at construction.
//
// # Thread Safety
//
// Only the name registry is safe for concurrent use. Control values and
// manifold configuration are manipulated by a single logical owner; a
// planner that parallelizes propagation must give each worker its own
// allocated states and controls.
package control
