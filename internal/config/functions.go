package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// standardFunctions returns the functions available in envreport.hcl
func standardFunctions() map[string]function.Function {
	return map[string]function.Function{
		// String functions
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"trimsuffix": stdlib.TrimSuffixFunc,
		"replace":    stdlib.ReplaceFunc,
		"join":       stdlib.JoinFunc,
		"format":     stdlib.FormatFunc,

		// Collection functions
		"coalesce": stdlib.CoalesceFunc,

		// Type conversion
		"tostring": stdlib.MakeToFunc(cty.String),
		"tobool":   stdlib.MakeToFunc(cty.Bool),

		// Custom functions
		"env":      envFunc,
		"file":     fileFunc,
		"dirname":  dirnameFunc,
		"lookpath": lookPathFunc,
	}
}

// envFunc returns the value of an environment variable
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "name",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// fileFunc reads the contents of a file, dropping one trailing newline
var fileFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "path",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		content, err := os.ReadFile(args[0].AsString())
		if err != nil {
			return cty.StringVal(""), err
		}
		return cty.StringVal(strings.TrimSuffix(string(content), "\n")), nil
	},
})

// dirnameFunc returns the directory name of a path
var dirnameFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "path",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(filepath.Dir(args[0].AsString())), nil
	},
})

// lookPathFunc resolves a command on PATH, returning null when it is missing
// so that coalesce can pick the first installed interpreter.
var lookPathFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "command",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		path, err := exec.LookPath(args[0].AsString())
		if err != nil {
			return cty.NullVal(cty.String), nil
		}
		return cty.StringVal(path), nil
	},
})
