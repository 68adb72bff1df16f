// Package declarative provides the DeclarativeProcessor class: a pipeline
// processor whose behaviour is written as a declarative expression.
//
// A definition selects it with the "processor" keyword:
//
//	pipeline_id: main
//	output: ratio
//	processor: |
//	  !DIVIDE
//	  - !ITEM EVENT bytes_in
//	  - !ITEM EVENT bytes_out
//
// The declaration is compiled, type checked and optimized once, at
// construction. See package expression for the language itself.
package declarative
