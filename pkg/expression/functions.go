package expression

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
)

// stringFuncs take exactly one string argument
var stringFuncs = map[string]func(string) interface{}{
	"LEN":   func(s string) interface{} { return len([]rune(s)) },
	"UPPER": func(s string) interface{} { return strings.ToUpper(s) },
	"LOWER": func(s string) interface{} { return strings.ToLower(s) },
	"TRIM":  func(s string) interface{} { return strings.TrimSpace(s) },
}

func stringFunc(name string, fn func(string) interface{}) expr.Option {
	return expr.Function(name, func(params ...interface{}) (interface{}, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s takes one argument, got %d", name, len(params))
		}
		s, ok := params[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s needs a string, got %T", name, params[0])
		}
		return fn(s), nil
	})
}

// compileOptions lets conditions reference any document key; absent keys are nil
func compileOptions() []expr.Option {
	opts := []expr.Option{
		expr.Env(map[string]interface{}{}),
		expr.AllowUndefinedVariables(),
		expr.Function("TODAY", func(params ...interface{}) (interface{}, error) {
			return time.Now().UTC().Format("2006-01-02"), nil
		}),
		expr.Function("ISBLANK", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("ISBLANK takes one argument, got %d", len(params))
			}
			switch v := params[0].(type) {
			case nil:
				return true, nil
			case string:
				return strings.TrimSpace(v) == "", nil
			}
			return false, nil
		}),
	}
	for name, fn := range stringFuncs {
		opts = append(opts, stringFunc(name, fn))
	}
	return opts
}
