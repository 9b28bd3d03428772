//go:build unit || e2e

package testutil

import (
	"strconv"
	"strings"
)

// Field sets the value at a dotted path such as "selections.0.qty". A nil
// value removes the key. Missing intermediate objects are created.
func Field(path string, value any) func(m map[string]any) {
	keys := strings.Split(path, ".")
	return func(m map[string]any) {
		var cur any = m
		for _, k := range keys[:len(keys)-1] {
			cur = step(cur, k)
			if cur == nil {
				return
			}
		}
		last := keys[len(keys)-1]
		switch node := cur.(type) {
		case map[string]any:
			if value == nil {
				delete(node, last)
			} else {
				node[last] = value
			}
		case []any:
			if i, err := strconv.Atoi(last); err == nil && i < len(node) {
				node[i] = value
			}
		}
	}
}

func step(node any, key string) any {
	switch n := node.(type) {
	case map[string]any:
		next, ok := n[key]
		if !ok {
			next = map[string]any{}
			n[key] = next
		}
		return next
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n) {
			return nil
		}
		return n[i]
	}
	return nil
}
