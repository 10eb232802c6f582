package blueprint

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const optionScriptFuncName = "Options"

// EvalOptionScript interprets a Go option script and returns the pool it
// produces. The script must define Options() returning []string or
// ([]string, error); the full standard library is available to it.
func EvalOptionScript(path string) ([]string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blueprint: read script %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("blueprint: script %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("blueprint: prepare interpreter: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("blueprint: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(optionScriptFuncName)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %s must define %s() ([]string[, error]): %w", path, optionScriptFuncName, err)
	}
	opts, err := invokeOptionFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %s: %w", path, err)
	}
	return opts, nil
}

func invokeOptionFunc(value reflect.Value) ([]string, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", optionScriptFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]string[, error])", optionScriptFuncName)
	}
	if len(results) == 2 {
		if !results[1].IsNil() {
			if e, ok := results[1].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned a non-error second value", optionScriptFuncName)
		}
	}
	opts, ok := results[0].Interface().([]string)
	if !ok {
		return nil, fmt.Errorf("%s must return []string", optionScriptFuncName)
	}
	if len(opts) == 0 {
		return nil, fmt.Errorf("%s returned no options", optionScriptFuncName)
	}
	return opts, nil
}
