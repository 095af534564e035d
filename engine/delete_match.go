// delete_match.go: expression-based bulk deletion (spec.md §4.3).
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package engine

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/vordex/storecore"
)

// DeleteAllMatching deletes every key whose serialized form satisfies
// matchType against expression. Requires a registered KeySerializer;
// without one it fails with Unsupported.
func (e *Engine[K, V]) DeleteAllMatching(matchType storecore.MatchType, expression string) (bool, error) {
	if e.serializer == nil {
		return false, storecore.NewErrUnsupported("deleteAll(matchType)", "no key serializer registered")
	}
	if matchType == storecore.MatchELExpression && e.elEvaluator == nil {
		return false, storecore.NewErrUnsupported("deleteAll(EL_EXPRESSION)", "no expression evaluator registered")
	}

	var regex *regexp.Regexp
	if matchType == storecore.MatchRegex {
		compiled, err := regexp.Compile(expression)
		if err != nil {
			return false, storecore.NewErrOperationFailed("deleteAll(matchType)", err)
		}
		regex = compiled
	}

	e.mu.Lock()
	candidates := make([]K, 0, len(e.lists))
	for key := range e.lists {
		candidates = append(candidates, key)
	}
	e.mu.Unlock()

	matched := make([]K, 0)
	for _, key := range candidates {
		ok, err := e.matches(key, matchType, expression, regex)
		if err != nil {
			e.logger.Warn("expression evaluation failed, treating as false", "error", err.Error())
			continue
		}
		if ok {
			matched = append(matched, key)
		}
	}

	anyRemoved := false
	for _, key := range matched {
		if _, err := e.Delete(key, nil); err == nil {
			anyRemoved = true
		}
	}
	return anyRemoved, nil
}

func (e *Engine[K, V]) matches(key K, matchType storecore.MatchType, expression string, regex *regexp.Regexp) (bool, error) {
	if matchType == storecore.MatchStartsWith {
		return bytes.HasPrefix(e.serializer.RawBytes(key), []byte(expression)), nil
	}

	form := e.serializer.Serialize(key)
	switch matchType {
	case storecore.MatchContains:
		return strings.Contains(form, expression), nil
	case storecore.MatchEndsWith:
		return strings.HasSuffix(form, expression), nil
	case storecore.MatchRegex:
		return regex.MatchString(form), nil
	case storecore.MatchELExpression:
		if e.elEvaluator == nil {
			return false, storecore.NewErrUnsupported("deleteAll(EL_EXPRESSION)", "no expression evaluator registered")
		}
		result, err := e.elEvaluator.Evaluate(expression, form)
		if err != nil {
			// EvaluationError never surfaces to the caller (spec.md §7):
			// logged by the caller and treated as a false predicate.
			return false, err
		}
		return result, nil
	default:
		return false, storecore.NewErrUnsupported("deleteAll(matchType)", matchType.String())
	}
}
