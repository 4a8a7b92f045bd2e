// Package pipeline implements the four conversion stages: Reader,
// Planner, Validator, and Generator. Stages are deterministic
// functions of their inputs; retry policy and logging belong to the
// orchestrator. Optional LLM augmentation is mediated by Enhancer and
// can only ever add candidates that appear verbatim in the input.
package pipeline
