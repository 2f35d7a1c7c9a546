package templates

import (
	"regexp"
	"strings"
)

var (
	usingNamespaceStd = regexp.MustCompile(`using\s+namespace\s+std\s*;`)
	cppSolutionClass  = regexp.MustCompile(`\b(class|struct)\s+Solution\b`)

	javaImportLine    = regexp.MustCompile(`(?m)^[ \t]*import\s+(static\s+)?[\w.]+(\.\*)?\s*;[ \t]*\r?$\n?`)
	javaPackageLine   = regexp.MustCompile(`(?m)^[ \t]*package\s+[\w.]+\s*;[ \t]*\r?$\n?`)
	javaSolutionClass = regexp.MustCompile(`(?m)^[ \t]*((public|final|abstract)\s+)*class\s+Solution\b[^{]*\{`)
)

const javaDefaultImport = "import java.util.*;"

// prepareCpp moves whole-namespace imports out of the user text. The wrapper
// emits a single directive ahead of the source when the user had one, and
// declares common std names individually otherwise. Sources without a Solution
// class get an adapter.
func prepareCpp(source string, data *wrapperData) {
	data.UsesNamespaceStd = usingNamespaceStd.MatchString(source)
	data.Source = usingNamespaceStd.ReplaceAllString(source, "")
	data.HasSolutionClass = cppSolutionClass.MatchString(data.Source)
}

// prepareJava hoists imports above every type declaration and unwraps a user
// Solution class so that the file declares exactly one public Solution.
func prepareJava(source string, data *wrapperData) {
	source = javaPackageLine.ReplaceAllString(source, "")

	imports := []string{javaDefaultImport}
	seen := map[string]bool{javaDefaultImport: true}
	for _, imp := range javaImportLine.FindAllString(source, -1) {
		imp = strings.TrimSpace(imp)
		if !seen[imp] {
			seen[imp] = true
			imports = append(imports, imp)
		}
	}
	source = javaImportLine.ReplaceAllString(source, "")
	data.Imports = imports

	loc := javaSolutionClass.FindStringIndex(source)
	if loc == nil {
		data.Body = source
		return
	}
	closing := matchingBrace(source, loc[1]-1)
	if closing < 0 {
		// Unbalanced source, let javac report it.
		data.Body = source
		return
	}
	data.Body = source[loc[1]:closing]
	data.Source = strings.TrimSpace(source[:loc[0]] + "\n" + source[closing+1:])
}

// matchingBrace returns the index of the brace closing the one at open,
// skipping string and char literals and comments, or -1.
func matchingBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(src, i, c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return -1
			}
			i += nl
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return -1
			}
			i += end + 3
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipLiteral(src string, start int, quote byte) int {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			return i
		}
	}
	return len(src)
}
