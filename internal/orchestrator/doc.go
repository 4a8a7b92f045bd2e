// Package orchestrator runs the conversion pipeline: one Reader pass,
// a bounded Planner/Validator retry loop, and one Generator pass.
//
// Retry policy lives here and nowhere else. The Validator reports
// findings without judging them; the orchestrator decides what blocks,
// what retries, and what is accepted. Warning-only findings are
// accepted once at least one retry has happened, so a heuristic that
// keeps firing cannot starve a conversion.
package orchestrator
