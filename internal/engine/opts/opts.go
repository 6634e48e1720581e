package opts

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/phyten/usagex/internal/detect"
	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
)

const (
	maxJobs = 64
)

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

// Outputs は --output で受け付ける形式です。
var Outputs = []string{"table", "summary", "json", "ndjson", "csv", "tsv", "markdown"}

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(root string) engine.Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return engine.Options{
		Root:           root,
		CaseSensitive:  false,
		WholeWord:      false,
		MaxResults:     0,
		MaxFileBytes:   1 << 20,
		ExcludeTypical: true,
		Jobs:           jobs,
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into the
// provided options. Validation happens separately via NormalizeAndValidate.
// The search root is never taken from the query.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def

	if raw, ok := lastRawValue(q["term"]); ok {
		out.Term = raw
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{"case_sensitive", &out.CaseSensitive},
		{"whole_word", &out.WholeWord},
		{"exclude_typical", &out.ExcludeTypical},
	}
	for _, b := range bools {
		if raw, ok := lastLiteralValue(q[b.key]); ok {
			v, err := ParseBool(raw, b.key)
			if err != nil {
				return out, err
			}
			*b.dst = v
		}
	}
	if raw, ok := lastLiteralValue(q["max_results"]); ok {
		n, err := ParseIntInRange(raw, "max_results", 0, -1)
		if err != nil {
			return out, err
		}
		out.MaxResults = n
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := ParseIntInRange(raw, "max_file_bytes", 0, -1)
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = n
	}
	if raw, ok := lastLiteralValue(q["jobs"]); ok {
		n, err := ParseIntInRange(raw, "jobs", 1, maxJobs)
		if err != nil {
			return out, err
		}
		out.Jobs = n
	}
	if raw := q["include"]; len(raw) > 0 {
		out.Include = SplitMulti(raw)
	}
	if raw := q["exclude"]; len(raw) > 0 {
		out.Exclude = SplitMulti(raw)
	}
	if raw := q["langs"]; len(raw) > 0 {
		out.Langs = SplitMulti(raw)
	}
	if raw := q["categories"]; len(raw) > 0 {
		cats, err := ParseCategories(SplitMulti(raw))
		if err != nil {
			return out, err
		}
		out.Categories = cats
	}

	return out, nil
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges.
// All problems are reported together.
func NormalizeAndValidate(o *engine.Options) error {
	var errs []error
	if strings.TrimSpace(o.Term) == "" {
		errs = append(errs, engine.ErrEmptyTerm)
	}
	if o.Jobs < 1 || o.Jobs > maxJobs {
		errs = append(errs, fmt.Errorf("jobs must be between 1 and %d", maxJobs))
	}
	if o.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("max_results must be >= 0"))
	}
	if o.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("max_file_bytes must be >= 0"))
	}
	if strings.TrimSpace(o.Root) == "" {
		o.Root = "."
	}

	o.Include = trimSlice(o.Include)
	o.Exclude = trimSlice(o.Exclude)
	o.Langs = trimSlice(o.Langs)
	if len(o.Langs) > 0 {
		o.Langs = detect.CanonicalDetectLangs(o.Langs)
	}
	o.Categories = dedupeCategories(o.Categories)
	for _, c := range o.Categories {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("unknown category: %s", c))
		}
	}
	return errors.Join(errs...)
}

// ParseCategories はカテゴリ名の一覧を解釈します (大文字小文字、- と _ の違いは無視)。
func ParseCategories(values []string) ([]model.Category, error) {
	var out []model.Category
	for _, raw := range values {
		c, err := model.ParseCategory(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return dedupeCategories(out), nil
}

func dedupeCategories(cats []model.Category) []model.Category {
	if len(cats) == 0 {
		return cats
	}
	seen := make(map[model.Category]struct{}, len(cats))
	out := cats[:0]
	for _, c := range cats {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ParseBool converts a string literal into a boolean, accepting multiple synonyms.
func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "md" {
		v = "markdown"
	}
	for _, known := range Outputs {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid --output: %s", value)
}

// SplitMulti turns repeated query parameters (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

// 検索語はカンマや前後の空白も意味を持つので分割しない
func lastRawValue(vals []string) (string, bool) {
	for i := len(vals) - 1; i >= 0; i-- {
		if strings.TrimSpace(vals[i]) == "" {
			continue
		}
		return vals[i], true
	}
	return "", false
}

func trimSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
