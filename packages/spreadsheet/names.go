package spreadsheet

import (
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UpperNormalizer upper-cases names, so "a1" and "A1" refer to the same
// cell. cases.Caser is not safe for concurrent use, so one is built per call.
func UpperNormalizer(name string) string {
	return cases.Upper(language.Und).String(name)
}

// LowerNormalizer lower-cases names
func LowerNormalizer(name string) string {
	return cases.Lower(language.Und).String(name)
}

// PatternValidator returns a Validator accepting names that fully match the
// given regular expression. the pattern is anchored if it is not already.
func PatternValidator(pattern string) (Validator, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern %q: %w", pattern, err)
	}
	return re.MatchString, nil
}

// ChainValidators accepts a name only if every validator accepts it
func ChainValidators(validators ...Validator) Validator {
	return func(name string) bool {
		for _, v := range validators {
			if v != nil && !v(name) {
				return false
			}
		}
		return true
	}
}

// NormalizerByName maps a config name to a Normalizer. "" and "none" are
// the identity.
func NormalizerByName(name string) (Normalizer, error) {
	switch name {
	case "", "none":
		return IdentityNormalizer, nil
	case "upper":
		return UpperNormalizer, nil
	case "lower":
		return LowerNormalizer, nil
	}
	return nil, fmt.Errorf("unknown normalizer %q", name)
}
