// Package templates embeds user solutions into complete programs that read
// their arguments from stdin and print the result as compact JSON.
package templates

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
	"github.com/mini-maxit/harness/pkg/solution"
)

// SentinelOutput is printed by every wrapper when the input records are malformed.
const SentinelOutput = "[]"

type param struct {
	Index int
	Kind  solution.ParamKind
}

type wrapperData struct {
	Source   string
	Params   []param
	Arity    int
	Sentinel string

	// C++ only.
	HasSolutionClass bool
	UsesNamespaceStd bool
	// Java only.
	Imports []string
	Body    string
}

type wrapper struct {
	tmpl *template.Template
	// prepare performs the text surgery on the user source before rendering.
	prepare func(source string, data *wrapperData)
}

var funcMap = template.FuncMap{
	"cppType":   cppType,
	"cppParser": cppParser,
	"javaType":  javaType,
	"javaParse": javaParser,
	"kindName":  func(k solution.ParamKind) string { return k.String() },
}

var registry = map[languages.LanguageType]wrapper{
	languages.JS: {
		tmpl:    template.Must(template.New("js").Funcs(funcMap).Parse(jsWrapper)),
		prepare: keepSource,
	},
	languages.PYTHON: {
		tmpl:    template.Must(template.New("python").Funcs(funcMap).Parse(pythonWrapper)),
		prepare: keepSource,
	},
	languages.CPP: {
		tmpl:    template.Must(template.New("cpp").Funcs(funcMap).Parse(cppWrapper)),
		prepare: prepareCpp,
	},
	languages.JAVA: {
		tmpl:    template.Must(template.New("java").Funcs(funcMap).Parse(javaWrapper)),
		prepare: prepareJava,
	},
}

// Wrap embeds rawSource using the default array + scalar signature.
func Wrap(lang languages.LanguageType, rawSource string) (string, error) {
	return WrapWithSignature(lang, rawSource, solution.DefaultSignature)
}

// WrapWithSignature embeds rawSource into a runnable program expecting one stdin
// record per signature parameter.
func WrapWithSignature(lang languages.LanguageType, rawSource string, sig solution.Signature) (string, error) {
	w, ok := registry[lang]
	if !ok {
		return "", fmt.Errorf("%w: no template registered for language %d", errors.ErrUnsupportedLanguage, lang)
	}
	if len(sig) == 0 {
		sig = solution.DefaultSignature
	}

	data := wrapperData{
		Params:   make([]param, len(sig)),
		Arity:    len(sig),
		Sentinel: SentinelOutput,
	}
	for i, kind := range sig {
		if kind.String() == "" {
			return "", fmt.Errorf("unknown parameter kind %d at position %d", kind, i)
		}
		data.Params[i] = param{Index: i, Kind: kind}
	}
	w.prepare(rawSource, &data)

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s wrapper: %w", lang, err)
	}
	return buf.String(), nil
}

func keepSource(source string, data *wrapperData) {
	data.Source = source
}

func cppType(k solution.ParamKind) string {
	switch k {
	case solution.IntArray:
		return "std::vector<int>"
	case solution.Int:
		return "int"
	case solution.String:
		return "std::string"
	case solution.StringArray:
		return "std::vector<std::string>"
	case solution.Bool:
		return "bool"
	}
	return ""
}

func cppParser(k solution.ParamKind) string {
	switch k {
	case solution.IntArray:
		return "harness_parse_int_array"
	case solution.Int:
		return "harness_parse_int"
	case solution.String:
		return "harness_parse_string"
	case solution.StringArray:
		return "harness_parse_string_array"
	case solution.Bool:
		return "harness_parse_bool"
	}
	return ""
}

func javaType(k solution.ParamKind) string {
	switch k {
	case solution.IntArray:
		return "int[]"
	case solution.Int:
		return "int"
	case solution.String:
		return "String"
	case solution.StringArray:
		return "String[]"
	case solution.Bool:
		return "boolean"
	}
	return ""
}

func javaParser(k solution.ParamKind) string {
	switch k {
	case solution.IntArray:
		return "parseIntArray"
	case solution.Int:
		return "parseInt"
	case solution.String:
		return "parseString"
	case solution.StringArray:
		return "parseStringArray"
	case solution.Bool:
		return "parseBool"
	}
	return ""
}
