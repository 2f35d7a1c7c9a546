package templates

const jsWrapper = `{{.Source}}

;(function harnessMain() {
  const kinds = [{{range $i, $p := .Params}}{{if $i}}, {{end}}'{{kindName $p.Kind}}'{{end}}];
  const check = (value, kind) => {
    switch (kind) {
      case 'int': return Number.isInteger(value);
      case 'bool': return typeof value === 'boolean';
      case 'string': return typeof value === 'string';
      case 'int[]': return Array.isArray(value) && value.every(Number.isInteger);
      case 'string[]': return Array.isArray(value) && value.every((v) => typeof v === 'string');
      default: return true;
    }
  };
  const decode = (record, kind) => {
    const text = record.trim();
    if (kind === 'string' && !text.startsWith('"')) {
      return text;
    }
    const value = JSON.parse(text);
    if (!check(value, kind)) {
      throw new TypeError('record does not match ' + kind);
    }
    return value;
  };

  let args;
  try {
    const records = require('fs').readFileSync(0, 'utf8').split(/\r?\n/).filter((line) => line.trim() !== '');
    if (records.length < kinds.length) {
      console.log('{{.Sentinel}}');
      return;
    }
    args = kinds.map((kind, i) => decode(records[i], kind));
  } catch (e) {
    console.log('{{.Sentinel}}');
    return;
  }

  const entry = typeof solution === 'function'
    ? solution
    : (...params) => new Solution().solution(...params);
  const result = entry(...args);
  console.log(JSON.stringify(result === undefined ? null : result));
})();
`

const pythonWrapper = `{{.Source}}

import json as _harness_json
import sys as _harness_sys


def _harness_check(value, kind):
    if kind == "int":
        return isinstance(value, int) and not isinstance(value, bool)
    if kind == "bool":
        return isinstance(value, bool)
    if kind == "string":
        return isinstance(value, str)
    if kind == "int[]":
        return isinstance(value, list) and all(_harness_check(v, "int") for v in value)
    if kind == "string[]":
        return isinstance(value, list) and all(isinstance(v, str) for v in value)
    return True


def _harness_decode(record, kind):
    text = record.strip()
    if kind == "string" and not text.startswith('"'):
        return text
    value = _harness_json.loads(text)
    if not _harness_check(value, kind):
        raise ValueError("record does not match " + kind)
    return value


def _harness_main():
    kinds = [{{range $i, $p := .Params}}{{if $i}}, {{end}}"{{kindName $p.Kind}}"{{end}}]
    try:
        records = [line for line in _harness_sys.stdin.read().splitlines() if line.strip()]
        if len(records) < len(kinds):
            print("{{.Sentinel}}")
            return
        args = [_harness_decode(record, kind) for record, kind in zip(records, kinds)]
    except Exception:
        print("{{.Sentinel}}")
        return

    entry = globals().get("solution")
    if not callable(entry):
        entry = globals()["Solution"]().solution
    result = entry(*args)
    print(_harness_json.dumps(result, separators=(",", ":")))


_harness_main()
`

const cppWrapper = `#include <algorithm>
#include <array>
#include <bitset>
#include <climits>
#include <cmath>
#include <cstdint>
#include <cstdlib>
#include <cstring>
#include <deque>
#include <functional>
#include <iomanip>
#include <iostream>
#include <limits>
#include <list>
#include <map>
#include <numeric>
#include <queue>
#include <set>
#include <sstream>
#include <stack>
#include <stdexcept>
#include <string>
#include <tuple>
#include <type_traits>
#include <unordered_map>
#include <unordered_set>
#include <utility>
#include <vector>

using std::abs;
using std::cin;
using std::cout;
using std::deque;
using std::endl;
using std::getline;
using std::make_pair;
using std::map;
using std::max;
using std::min;
using std::pair;
using std::priority_queue;
using std::queue;
using std::reverse;
using std::set;
using std::sort;
using std::stack;
using std::stoi;
using std::string;
using std::swap;
using std::to_string;
using std::unordered_map;
using std::unordered_set;
using std::vector;
{{if .UsesNamespaceStd}}
using namespace std;
{{end}}
{{.Source}}
{{if not .HasSolutionClass}}
class Solution {
public:
    template <typename... Args>
    auto solution(Args&&... args) -> decltype(::solution(std::forward<Args>(args)...)) {
        return ::solution(std::forward<Args>(args)...);
    }
};
{{end}}
static std::string harness_trim(const std::string& s) {
    size_t begin = s.find_first_not_of(" \t\r\n");
    if (begin == std::string::npos) {
        return "";
    }
    size_t end = s.find_last_not_of(" \t\r\n");
    return s.substr(begin, end - begin + 1);
}

static int harness_parse_int(const std::string& record) {
    std::string text = harness_trim(record);
    size_t pos = 0;
    int value = std::stoi(text, &pos);
    if (pos != text.size()) {
        throw std::invalid_argument("trailing characters in int record");
    }
    return value;
}

static bool harness_parse_bool(const std::string& record) {
    std::string text = harness_trim(record);
    if (text == "true") {
        return true;
    }
    if (text == "false") {
        return false;
    }
    throw std::invalid_argument("bad bool record");
}

static std::string harness_unquote(const std::string& text, size_t& pos) {
    if (pos >= text.size() || text[pos] != '"') {
        throw std::invalid_argument("expected string literal");
    }
    std::string out;
    for (++pos; pos < text.size(); ++pos) {
        char c = text[pos];
        if (c == '"') {
            ++pos;
            return out;
        }
        if (c == '\\' && pos + 1 < text.size()) {
            char next = text[++pos];
            switch (next) {
            case 'n': out += '\n'; break;
            case 't': out += '\t'; break;
            case 'r': out += '\r'; break;
            default: out += next;
            }
            continue;
        }
        out += c;
    }
    throw std::invalid_argument("unterminated string literal");
}

static std::string harness_parse_string(const std::string& record) {
    std::string text = harness_trim(record);
    if (text.empty() || text[0] != '"') {
        return text;
    }
    size_t pos = 0;
    std::string value = harness_unquote(text, pos);
    if (pos != text.size()) {
        throw std::invalid_argument("trailing characters in string record");
    }
    return value;
}

static std::string harness_array_body(const std::string& record) {
    std::string text = harness_trim(record);
    if (text.size() < 2 || text.front() != '[' || text.back() != ']') {
        throw std::invalid_argument("expected array record");
    }
    return harness_trim(text.substr(1, text.size() - 2));
}

static std::vector<int> harness_parse_int_array(const std::string& record) {
    std::vector<int> values;
    std::string body = harness_array_body(record);
    if (body.empty()) {
        return values;
    }
    std::stringstream stream(body);
    std::string item;
    while (std::getline(stream, item, ',')) {
        values.push_back(harness_parse_int(item));
    }
    return values;
}

static std::vector<std::string> harness_parse_string_array(const std::string& record) {
    std::vector<std::string> values;
    std::string body = harness_array_body(record);
    size_t pos = 0;
    while (pos < body.size()) {
        pos = body.find_first_not_of(" \t", pos);
        if (pos == std::string::npos) {
            break;
        }
        values.push_back(harness_unquote(body, pos));
        pos = body.find_first_not_of(" \t", pos);
        if (pos == std::string::npos) {
            break;
        }
        if (body[pos] != ',') {
            throw std::invalid_argument("expected comma in string array");
        }
        ++pos;
    }
    return values;
}

static void harness_write(std::ostream& out, const std::string& value) {
    out << '"';
    for (char c : value) {
        switch (c) {
        case '"': out << "\\\""; break;
        case '\\': out << "\\\\"; break;
        case '\n': out << "\\n"; break;
        case '\t': out << "\\t"; break;
        default: out << c;
        }
    }
    out << '"';
}

static void harness_write(std::ostream& out, const char* value) {
    harness_write(out, std::string(value));
}

static void harness_write(std::ostream& out, bool value) {
    out << (value ? "true" : "false");
}

template <typename T>
static typename std::enable_if<std::is_arithmetic<T>::value>::type harness_write(std::ostream& out, T value) {
    out << value;
}

template <typename T>
static void harness_write(std::ostream& out, const std::vector<T>& values) {
    out << '[';
    for (size_t i = 0; i < values.size(); ++i) {
        if (i > 0) {
            out << ',';
        }
        harness_write(out, static_cast<T>(values[i]));
    }
    out << ']';
}

int main() {
    std::vector<std::string> records;
    std::string line;
    while (std::getline(std::cin, line)) {
        if (!harness_trim(line).empty()) {
            records.push_back(line);
        }
    }
    if (records.size() < {{.Arity}}) {
        std::cout << "{{.Sentinel}}" << std::endl;
        return 0;
    }
{{range .Params}}
    {{cppType .Kind}} arg{{.Index}}{};{{end}}
    try {
{{- range .Params}}
        arg{{.Index}} = {{cppParser .Kind}}(records[{{.Index}}]);{{end}}
    } catch (...) {
        std::cout << "{{.Sentinel}}" << std::endl;
        return 0;
    }

    Solution harness_solution;
    auto result = harness_solution.solution({{range $i, $p := .Params}}{{if $i}}, {{end}}arg{{$p.Index}}{{end}});
    harness_write(std::cout, result);
    std::cout << std::endl;
    return 0;
}
`

const javaWrapper = `{{range .Imports}}{{.}}
{{end}}
{{.Source}}

final class HarnessIO {
    private HarnessIO() {
    }

    static int parseInt(String record) {
        return Integer.parseInt(record.trim());
    }

    static boolean parseBool(String record) {
        String text = record.trim();
        if (text.equals("true")) {
            return true;
        }
        if (text.equals("false")) {
            return false;
        }
        throw new IllegalArgumentException("bad bool record");
    }

    static String parseString(String record) {
        String text = record.trim();
        if (!text.startsWith("\"")) {
            return text;
        }
        int[] pos = {0};
        String value = unquote(text, pos);
        if (pos[0] != text.length()) {
            throw new IllegalArgumentException("trailing characters in string record");
        }
        return value;
    }

    static int[] parseIntArray(String record) {
        String body = arrayBody(record);
        if (body.isEmpty()) {
            return new int[0];
        }
        String[] parts = body.split(",");
        int[] values = new int[parts.length];
        for (int i = 0; i < parts.length; i++) {
            values[i] = parseInt(parts[i]);
        }
        return values;
    }

    static String[] parseStringArray(String record) {
        String body = arrayBody(record);
        java.util.List<String> values = new java.util.ArrayList<>();
        int[] pos = {0};
        while (pos[0] < body.length()) {
            skipBlanks(body, pos);
            if (pos[0] >= body.length()) {
                break;
            }
            values.add(unquote(body, pos));
            skipBlanks(body, pos);
            if (pos[0] >= body.length()) {
                break;
            }
            if (body.charAt(pos[0]) != ',') {
                throw new IllegalArgumentException("expected comma in string array");
            }
            pos[0]++;
        }
        return values.toArray(new String[0]);
    }

    private static String arrayBody(String record) {
        String text = record.trim();
        if (text.length() < 2 || text.charAt(0) != '[' || text.charAt(text.length() - 1) != ']') {
            throw new IllegalArgumentException("expected array record");
        }
        return text.substring(1, text.length() - 1).trim();
    }

    private static void skipBlanks(String text, int[] pos) {
        while (pos[0] < text.length() && Character.isWhitespace(text.charAt(pos[0]))) {
            pos[0]++;
        }
    }

    private static String unquote(String text, int[] pos) {
        if (pos[0] >= text.length() || text.charAt(pos[0]) != '"') {
            throw new IllegalArgumentException("expected string literal");
        }
        StringBuilder out = new StringBuilder();
        for (pos[0]++; pos[0] < text.length(); pos[0]++) {
            char c = text.charAt(pos[0]);
            if (c == '"') {
                pos[0]++;
                return out.toString();
            }
            if (c == '\\' && pos[0] + 1 < text.length()) {
                char next = text.charAt(++pos[0]);
                switch (next) {
                    case 'n': out.append('\n'); break;
                    case 't': out.append('\t'); break;
                    case 'r': out.append('\r'); break;
                    default: out.append(next);
                }
                continue;
            }
            out.append(c);
        }
        throw new IllegalArgumentException("unterminated string literal");
    }

    static String toJSON(Object value) {
        if (value == null) {
            return "null";
        }
        if (value instanceof String) {
            String s = (String) value;
            return "\"" + s.replace("\\", "\\\\").replace("\"", "\\\"").replace("\n", "\\n").replace("\t", "\\t") + "\"";
        }
        if (value instanceof Character) {
            return toJSON(String.valueOf(value));
        }
        if (value instanceof Number || value instanceof Boolean) {
            return String.valueOf(value);
        }
        if (value instanceof java.util.Collection) {
            return toJSON(((java.util.Collection<?>) value).toArray());
        }
        if (value.getClass().isArray()) {
            StringBuilder out = new StringBuilder("[");
            int length = java.lang.reflect.Array.getLength(value);
            for (int i = 0; i < length; i++) {
                if (i > 0) {
                    out.append(',');
                }
                out.append(toJSON(java.lang.reflect.Array.get(value, i)));
            }
            return out.append(']').toString();
        }
        return toJSON(value.toString());
    }
}

public class Solution {
{{.Body}}

    public static void main(String[] args) throws java.io.IOException {
        java.io.BufferedReader reader = new java.io.BufferedReader(new java.io.InputStreamReader(System.in));
        java.util.List<String> records = new java.util.ArrayList<>();
        String line;
        while ((line = reader.readLine()) != null) {
            if (!line.trim().isEmpty()) {
                records.add(line);
            }
        }
        if (records.size() < {{.Arity}}) {
            System.out.println("{{.Sentinel}}");
            return;
        }
{{range .Params}}
        {{javaType .Kind}} arg{{.Index}};{{end}}
        try {
{{- range .Params}}
            arg{{.Index}} = HarnessIO.{{javaParse .Kind}}(records.get({{.Index}}));{{end}}
        } catch (RuntimeException e) {
            System.out.println("{{.Sentinel}}");
            return;
        }

        Object result = new Solution().solution({{range $i, $p := .Params}}{{if $i}}, {{end}}arg{{$p.Index}}{{end}});
        System.out.println(HarnessIO.toJSON(result));
    }
}
`
