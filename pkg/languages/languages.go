package languages

import (
	"path/filepath"
	"strings"

	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/messages"
)

type LanguageType int

const (
	JS LanguageType = iota + 1
	PYTHON
	CPP
	JAVA
)

// Definition holds the immutable per-language metadata. Command templates are
// tokenised before placeholder expansion, see the planner for the placeholders.
type Definition struct {
	Name            string
	Extension       string
	SourceFileName  string
	CompileTemplate string
	RunTemplate     string
	DockerImage     string
	Version         string
}

var definitions = map[LanguageType]Definition{
	JS: {
		Name:           "JS",
		Extension:      "js",
		SourceFileName: "solution.js",
		RunTemplate:    "node {src}",
		DockerImage:    "node:20-alpine",
		Version:        "20",
	},
	PYTHON: {
		Name:           "PYTHON",
		Extension:      "py",
		SourceFileName: "solution.py",
		RunTemplate:    "python3 {src}",
		DockerImage:    "python:3.12-alpine",
		Version:        "3.12",
	},
	CPP: {
		Name:            "CPP",
		Extension:       "cpp",
		SourceFileName:  "solution.cpp",
		CompileTemplate: "g++ -std=c++17 -O2 {flags} -o {bin} {src}",
		RunTemplate:     "{bin}",
		DockerImage:     "gcc:13",
		Version:         "17",
	},
	JAVA: {
		// javac requires the public class name to match the file name.
		Name:            "JAVA",
		Extension:       "java",
		SourceFileName:  "Solution.java",
		CompileTemplate: "javac {flags} -d {dir} {src}",
		RunTemplate:     "java -cp {dir} Solution",
		DockerImage:     "eclipse-temurin:21-jdk",
		Version:         "21",
	},
}

var LanguageTypeMap = map[string]LanguageType{
	"JS":         JS,
	"JAVASCRIPT": JS,
	"NODE":       JS,
	"PYTHON":     PYTHON,
	"PY":         PYTHON,
	"CPP":        CPP,
	"C++":        CPP,
	"JAVA":       JAVA,
}

func (lt LanguageType) String() string {
	if def, ok := definitions[lt]; ok {
		return def.Name
	}
	return ""
}

func (lt LanguageType) MarshalText() ([]byte, error) {
	return []byte(lt.String()), nil
}

func (lt *LanguageType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*lt = 0
		return nil
	}
	parsed, err := ParseLanguageType(string(text))
	if err != nil {
		return err
	}
	*lt = parsed
	return nil
}

// Definition returns the metadata of the language or ErrUnsupportedLanguage.
func (lt LanguageType) Definition() (Definition, error) {
	def, ok := definitions[lt]
	if !ok {
		return Definition{}, errors.ErrUnsupportedLanguage
	}
	return def, nil
}

func (lt LanguageType) IsScriptingLanguage() bool {
	def, ok := definitions[lt]
	return ok && def.CompileTemplate == ""
}

func (lt LanguageType) GetDockerImage() (string, error) {
	def, err := lt.Definition()
	if err != nil {
		return "", err
	}
	return def.DockerImage, nil
}

func ParseLanguageType(s string) (LanguageType, error) {
	if lt, ok := LanguageTypeMap[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return lt, nil
	}
	return 0, errors.ErrUnsupportedLanguage
}

// FromExtension maps a file name or extension (".cpp", "cpp", "solution.cpp") to a language.
func FromExtension(name string) (LanguageType, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(strings.ToLower(name), ".")
	}
	for _, lt := range GetSupportedLanguages() {
		if definitions[lt].Extension == ext {
			return lt, nil
		}
	}
	return 0, errors.ErrUnsupportedLanguage
}

// GetSupportedLanguages lists the languages in declaration order.
func GetSupportedLanguages() []LanguageType {
	return []LanguageType{JS, PYTHON, CPP, JAVA}
}

func GetSupportedLanguagesWithVersions() messages.ResponseHandshakePayload {
	supported := make([]messages.LanguageSpec, 0, len(definitions))
	for _, lt := range GetSupportedLanguages() {
		def := definitions[lt]
		supported = append(supported, messages.LanguageSpec{
			LanguageName: def.Name,
			Versions:     []string{def.Version},
			Extension:    def.Extension,
			Compiled:     def.CompileTemplate != "",
		})
	}
	return messages.ResponseHandshakePayload{Languages: supported}
}
