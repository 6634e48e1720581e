// Package detect はファイル名と先頭行からエディタ形式の言語 ID
// (javascript, typescriptreact, python など) を推定します。
package detect

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Info は推定結果です。Name が空なら不明。
type Info struct {
	Name string
}

// FromPathAndContent はパス (ファイル名・拡張子) を優先し、判定できなければ
// shebang 行を見ます。.m は Objective-C を既定としつつ、MATLAB らしい内容なら不明扱いにします。
func FromPathAndContent(p string, data []byte) Info {
	if name := byPath(p); name != "" {
		if name == "objective-c" && strings.EqualFold(filepath.Ext(p), ".m") && looksLikeMatlab(data) {
			return Info{}
		}
		return Info{Name: name}
	}
	return Info{Name: byShebang(data)}
}

func byPath(p string) string {
	base := strings.ToLower(filepath.Base(p))
	if lang, ok := basenameLanguages[base]; ok {
		return lang
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	// foo.d.ts.map のような多重拡張子は 1 段だけ遡る
	stem := strings.TrimSuffix(base, ext)
	if lang, ok := extensionLanguages[filepath.Ext(stem)]; ok {
		return lang
	}
	return ""
}

func byShebang(data []byte) string {
	if !bytes.HasPrefix(data, []byte("#!")) {
		return ""
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	fields := strings.Fields(strings.ToLower(string(data[2:end])))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	// #!/usr/bin/env node
	if interp == "env" {
		interp = ""
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				interp = filepath.Base(f)
				break
			}
		}
	}
	interp = strings.TrimRight(interp, "0123456789.")
	return shebangLanguages[interp]
}

// NormalizeLangName は大小文字と別名 (js, tsx, py など) を吸収した言語 ID を返します。
func NormalizeLangName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := langAliases[n]; ok {
		return canon
	}
	return n
}

// MatchesLang は allow が空なら常に true。そうでなければ info の言語が allow に含まれるかを返します。
func MatchesLang(info Info, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	detected := NormalizeLangName(info.Name)
	if detected == "" {
		return false
	}
	for _, raw := range allow {
		if NormalizeLangName(raw) == detected {
			return true
		}
	}
	return false
}

// KnownLanguage は name (別名可) が推定結果として返り得る言語 ID かを返します。
func KnownLanguage(name string) bool {
	n := NormalizeLangName(name)
	if n == "" {
		return false
	}
	_, ok := knownLanguages[n]
	return ok
}

// CanonicalDetectLangs は正規化と重複除去を行い、出現順を保って返します。
func CanonicalDetectLangs(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		norm := NormalizeLangName(raw)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func looksLikeMatlab(data []byte) bool {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	sawKeyword := false
	for _, line := range strings.Split(string(sample), "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case lower == "" || strings.HasPrefix(lower, "%"):
			continue
		case strings.HasPrefix(lower, "@interface"), strings.HasPrefix(lower, "@implementation"), strings.HasPrefix(lower, "#import"):
			return false
		case strings.HasPrefix(lower, "function"), strings.HasPrefix(lower, "classdef"):
			return true
		case strings.HasPrefix(lower, "properties"), strings.HasPrefix(lower, "methods"):
			sawKeyword = true
		}
	}
	return sawKeyword
}

var basenameLanguages = map[string]string{
	"makefile":       "makefile",
	"gnumakefile":    "makefile",
	"dockerfile":     "dockerfile",
	"jenkinsfile":    "groovy",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"vagrantfile":    "ruby",
	"cmakelists.txt": "cmake",
	"setup.py":       "python",
	"package.json":   "json",
	"tsconfig.json":  "jsonc",
	"jsconfig.json":  "jsonc",
	".babelrc":       "jsonc",
	".eslintrc":      "jsonc",
}

var extensionLanguages = map[string]string{
	".js":      "javascript",
	".mjs":     "javascript",
	".cjs":     "javascript",
	".jsx":     "javascriptreact",
	".ts":      "typescript",
	".mts":     "typescript",
	".cts":     "typescript",
	".tsx":     "typescriptreact",
	".vue":     "vue",
	".svelte":  "svelte",
	".py":      "python",
	".pyi":     "python",
	".pyw":     "python",
	".java":    "java",
	".cs":      "csharp",
	".kt":      "kotlin",
	".kts":     "kotlin",
	".scala":   "scala",
	".groovy":  "groovy",
	".go":      "go",
	".rs":      "rust",
	".rb":      "ruby",
	".php":     "php",
	".swift":   "swift",
	".dart":    "dart",
	".c":       "c",
	".h":       "c",
	".cc":      "cpp",
	".cpp":     "cpp",
	".cxx":     "cpp",
	".hpp":     "cpp",
	".hh":      "cpp",
	".m":       "objective-c",
	".mm":      "objective-cpp",
	".sh":      "shellscript",
	".bash":    "shellscript",
	".zsh":     "shellscript",
	".ps1":     "powershell",
	".lua":     "lua",
	".sql":     "sql",
	".html":    "html",
	".htm":     "html",
	".css":     "css",
	".scss":    "scss",
	".less":    "less",
	".json":    "json",
	".jsonc":   "jsonc",
	".yaml":    "yaml",
	".yml":     "yaml",
	".toml":    "toml",
	".xml":     "xml",
	".md":      "markdown",
	".mdx":     "mdx",
	".proto":   "proto",
	".graphql": "graphql",
	".gql":     "graphql",
	".tf":      "terraform",
}

var shebangLanguages = map[string]string{
	"node":    "javascript",
	"deno":    "typescript",
	"bun":     "javascript",
	"ts-node": "typescript",
	"tsx":     "typescript",
	"python":  "python",
	"pypy":    "python",
	"ruby":    "ruby",
	"php":     "php",
	"bash":    "shellscript",
	"sh":      "shellscript",
	"zsh":     "shellscript",
	"lua":     "lua",
	"pwsh":    "powershell",
}

var langAliases = map[string]string{
	"js":     "javascript",
	"jsx":    "javascriptreact",
	"ts":     "typescript",
	"tsx":    "typescriptreact",
	"py":     "python",
	"c#":     "csharp",
	"cs":     "csharp",
	"c++":    "cpp",
	"kt":     "kotlin",
	"rb":     "ruby",
	"rs":     "rust",
	"golang": "go",
	"sh":     "shellscript",
	"bash":   "shellscript",
	"shell":  "shellscript",
	"yml":    "yaml",
	"md":     "markdown",
}

var knownLanguages = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, table := range []map[string]string{basenameLanguages, extensionLanguages, shebangLanguages} {
		for _, lang := range table {
			out[lang] = struct{}{}
		}
	}
	return out
}()
