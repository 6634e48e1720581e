package config

import "strings"

// resolve は後ろのレイヤーほど優先して、nil でない最後の値を返す
func resolve[T any](def T, values ...*T) T {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

// ResolveStrings は明示的な空リストを「クリア」として扱います。
func ResolveStrings(def []string, values ...*[]string) []string {
	result := cloneStrings(def)
	for _, v := range values {
		if v == nil {
			continue
		}
		if len(*v) == 0 {
			result = []string{}
			continue
		}
		result = cloneStrings(*v)
	}
	return result
}

func resolveTrim(def string, values ...*string) string {
	return strings.TrimSpace(resolve(def, values...))
}

func MergeSearch(base SearchSettings, layers ...SearchConfig) SearchSettings {
	out := base
	for _, layer := range layers {
		out.Root = resolveTrim(out.Root, layer.Root)
		out.CaseSensitive = resolve(out.CaseSensitive, layer.CaseSensitive)
		out.WholeWord = resolve(out.WholeWord, layer.WholeWord)
		out.Include = ResolveStrings(out.Include, layer.Include)
		out.Exclude = ResolveStrings(out.Exclude, layer.Exclude)
		out.Langs = ResolveStrings(out.Langs, layer.Langs)
		out.Categories = ResolveStrings(out.Categories, layer.Categories)
		out.MaxResults = resolve(out.MaxResults, layer.MaxResults)
		out.MaxFileBytes = resolve(out.MaxFileBytes, layer.MaxFileBytes)
		out.ExcludeTypical = resolve(out.ExcludeTypical, layer.ExcludeTypical)
		out.Jobs = resolve(out.Jobs, layer.Jobs)
		out.WithLinks = resolve(out.WithLinks, layer.WithLinks)
		out.Output = resolveTrim(out.Output, layer.Output)
		out.Color = resolveTrim(out.Color, layer.Color)
	}
	if out.Output == "" {
		out.Output = "table"
	}
	if out.Color == "" {
		out.Color = "auto"
	}
	return out
}

func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, layer := range layers {
		out.Fields = resolveTrim(out.Fields, layer.Fields)
		out.Sort = resolveTrim(out.Sort, layer.Sort)
		out.Context = resolve(out.Context, layer.Context)
		out.Style = resolveTrim(out.Style, layer.Style)
		out.Port = resolve(out.Port, layer.Port)
	}
	return out
}
