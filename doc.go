package saga

// Package saga runs a fixed, ordered list of compensable steps and
// unwinds them automatically, in reverse order, the moment a later step
// fails. It lets a caller compose multi-stage operations (provisioning
// several dependent resources, for example) with deterministic cleanup
// semantics, without an external transaction coordinator.
//
// Overview
//
// 1. Define your steps as functions:
//    - Write a run function and, where there is something to undo, a
//      compensate function.
//    - Steps that produce a result declare an output key; the result is
//      stored in the run Context under that key for later steps.
// 2. Assemble a saga with a Builder:
//    - AddAction / AddStep append steps in order; the *If variants take
//      a predicate that can skip the step at run time.
//    - Attach a logging sink with WithLogger (required) and, optionally,
//      a Registry of reusable steps with WithRegistry.
// 3. Build and execute:
//    - Build freezes the steps into an immutable Saga.
//    - Execute runs the steps sequentially against a per-run Context.
//      On failure, every step that ran is compensated latest-first; the
//      caller receives the triggering error, or a CompensationError when
//      the unwinding itself hit problems.
//
// A built Saga is safe to execute repeatedly and concurrently; each run
// owns its Context, executed stack and RunLog. Cancellation is observed
// between steps and stops the run without compensating.
//
// For a complete, documented example, see examples/provision.
