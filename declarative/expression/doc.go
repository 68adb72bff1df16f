// Package expression implements the declarative rule language: an expression
// tree compiled from YAML or JSON declarations, a specialization pass over the
// tree, type inference and the evaluator.
//
// # Declarations
//
// Expressions are written as YAML tags:
//
//	!EQ
//	- !ITEM EVENT status
//	- ok
//
// or, in JSON, as mappings with a "function" key:
//
//	{"function": "EQ", "items": [{"function": "ITEM", "with": {"function": "EVENT"}, "item": "status"}, "ok"]}
//
// Supported expressions are VALUE, EVENT, CONTEXT, KWARGS, ARG, ITEM, the
// chained comparisons LT, LE, EQ, NE, GE, GT, IS and ISNOT, DIVIDE and JOIN.
// Untagged nodes are literal values.
//
// # Evaluation
//
// Every node evaluates against a Scope holding the event, the per-event context
// and the extra positional and named parameters of the call. A failure inside
// a comparison is returned as a *DeclarationError naming the declarative clause
// that raised it.
//
// # Optimization
//
// Optimize rewrites a tree bottom-up into fused nodes (EventItem, ContextItem,
// ContextPath, EventKeyEquals, Equals) that evaluate identically to the generic
// form. A Program holds a checked and optimized tree; once built it is
// read-only and safe for concurrent evaluation.
package expression
