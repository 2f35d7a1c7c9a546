package languages_test

import (
	"encoding/json"
	"errors"
	"testing"

	pkgErr "github.com/mini-maxit/harness/pkg/errors"
	. "github.com/mini-maxit/harness/pkg/languages"
)

func TestParseLanguageType(t *testing.T) {
	tcs := []struct {
		in   string
		want LanguageType
	}{
		{"js", JS},
		{"JavaScript", JS},
		{" python ", PYTHON},
		{"py", PYTHON},
		{"c++", CPP},
		{"CPP", CPP},
		{"java", JAVA},
	}
	for _, tc := range tcs {
		got, err := ParseLanguageType(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseLanguageType(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}

	if _, err := ParseLanguageType("ruby"); !errors.Is(err, pkgErr.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestFromExtension(t *testing.T) {
	for name, want := range map[string]LanguageType{
		"solution.js":   JS,
		"a/b/main.PY":   PYTHON,
		".cpp":          CPP,
		"java":          JAVA,
		"Solution.java": JAVA,
	} {
		got, err := FromExtension(name)
		if err != nil || got != want {
			t.Errorf("FromExtension(%q) = %v, %v; want %v", name, got, err, want)
		}
	}

	if _, err := FromExtension("main.rs"); !errors.Is(err, pkgErr.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestDefinitions(t *testing.T) {
	for _, lt := range GetSupportedLanguages() {
		def, err := lt.Definition()
		if err != nil {
			t.Fatalf("%s has no definition: %v", lt, err)
		}
		if def.RunTemplate == "" || def.SourceFileName == "" || def.DockerImage == "" {
			t.Errorf("%s definition is incomplete: %+v", lt, def)
		}
		if lt.IsScriptingLanguage() != (def.CompileTemplate == "") {
			t.Errorf("%s IsScriptingLanguage disagrees with its compile template", lt)
		}
	}

	if _, err := LanguageType(0).Definition(); !errors.Is(err, pkgErr.ErrUnsupportedLanguage) {
		t.Fatalf("zero language must be unsupported, got %v", err)
	}
	if JS.IsScriptingLanguage() == CPP.IsScriptingLanguage() {
		t.Fatal("JS is interpreted and CPP is compiled")
	}
}

func TestLanguageTypeJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Lang LanguageType `json:"lang"`
	}{CPP})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"lang":"CPP"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var decoded struct {
		Lang LanguageType `json:"lang"`
	}
	if err := json.Unmarshal([]byte(`{"lang":"python"}`), &decoded); err != nil || decoded.Lang != PYTHON {
		t.Fatalf("unexpected decode %v, %v", decoded.Lang, err)
	}
	if err := json.Unmarshal([]byte(`{"lang":"cobol"}`), &decoded); err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestGetSupportedLanguagesWithVersions(t *testing.T) {
	specs := GetSupportedLanguagesWithVersions().Languages
	if len(specs) != len(GetSupportedLanguages()) {
		t.Fatalf("expected %d specs, got %d", len(GetSupportedLanguages()), len(specs))
	}
	if specs[0].LanguageName != "JS" || specs[0].Compiled {
		t.Fatalf("unexpected first spec %+v", specs[0])
	}
	if specs[2].LanguageName != "CPP" || !specs[2].Compiled || specs[2].Extension != "cpp" {
		t.Fatalf("unexpected CPP spec %+v", specs[2])
	}
}
