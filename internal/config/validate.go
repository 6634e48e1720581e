package config

import (
	"errors"
	"fmt"
	"strings"

	engineopts "github.com/phyten/usagex/internal/engine/opts"
)

var colorModes = map[string]struct{}{"auto": {}, "always": {}, "never": {}}

func CanonicalizeColor(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		return "auto", nil
	}
	if _, ok := colorModes[mode]; !ok {
		return "", fmt.Errorf("invalid color: %s", raw)
	}
	return mode, nil
}

func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// NormalizeSearch は出力形式と色指定を正規化します。
// 数値の範囲や言語名は engine/opts.NormalizeAndValidate の担当です。
func NormalizeSearch(values SearchSettings) (SearchSettings, error) {
	var errs []error
	if out, err := engineopts.NormalizeOutput(values.Output); err != nil {
		errs = append(errs, err)
	} else {
		values.Output = out
	}
	if mode, err := CanonicalizeColor(values.Color); err != nil {
		errs = append(errs, err)
	} else {
		values.Color = mode
	}
	if len(values.Categories) > 0 {
		if _, err := engineopts.ParseCategories(values.Categories); err != nil {
			errs = append(errs, err)
		}
	}
	return values, errors.Join(errs...)
}

func NormalizeUI(values UISettings) (UISettings, error) {
	values.Fields = strings.TrimSpace(values.Fields)
	values.Sort = strings.TrimSpace(values.Sort)
	values.Style = strings.ToLower(strings.TrimSpace(values.Style))
	if values.Style == "" {
		values.Style = DefaultUISettings().Style
	}
	if err := ValidatePort(values.Port); err != nil {
		return values, err
	}
	return values, nil
}
