// el_evaluator.go: the EL_EXPRESSION predicate evaluator (spec.md §4.3, §9).
//
// spec.md's "Open question: expression evaluator" is resolved here by
// plugging in an embeddable ECMAScript engine, the same family the pack
// uses for embedded-script evaluation
// (_examples/joeycumines-go-utilpkg/goja-protobuf), rather than
// restricting EL_EXPRESSION to Unsupported.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package engine

import (
	"fmt"

	"github.com/dop251/goja"
)

// GojaEvaluator evaluates an EL_EXPRESSION against a goja ECMAScript
// runtime. A fresh *goja.Runtime is used per call so one caller's
// globals can never leak into another's evaluation.
type GojaEvaluator struct{}

// NewGojaEvaluator returns an ExpressionEvaluator backed by goja.
func NewGojaEvaluator() *GojaEvaluator {
	return &GojaEvaluator{}
}

// Evaluate runs expression as a goja program with a single bound
// variable "key" set to the key's serialized string form, and reports
// whether the result is truthy. A script panic or compile error is
// returned as an error (spec.md §7 EvaluationError) rather than
// propagated to the caller as a runtime panic.
func (GojaEvaluator) Evaluate(expression string, key string) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = fmt.Errorf("el_expression evaluation panicked: %v", r)
		}
	}()

	vm := goja.New()
	if setErr := vm.Set("key", key); setErr != nil {
		return false, setErr
	}

	value, runErr := vm.RunString(expression)
	if runErr != nil {
		return false, runErr
	}
	return value.ToBoolean(), nil
}
