package lint

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Env returns the environment rules see for links[index] of doc. Index -1
// selects no linked action; action is then an empty object.
func Env(doc any, index int) (map[string]any, error) {
	root, ok := plain(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document is %T, not an object", doc)
	}
	if index < 0 {
		return envFor(root, map[string]any{}, index), nil
	}
	links, _ := root["links"].([]any)
	if index >= len(links) {
		return nil, fmt.Errorf("link %d out of range (document has %d)", index, len(links))
	}
	return envFor(root, links[index], index), nil
}

func envFor(root map[string]any, link any, index int) map[string]any {
	return map[string]any{"action": link, "index": index, "document": root}
}

// Eval compiles and runs one expression against env. Unlike rule
// expressions the result may have any type.
func Eval(expression string, env map[string]any) (any, error) {
	p, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return expr.Run(p, env)
}
