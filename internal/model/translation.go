package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultLang is the language treated as the default translation.
const DefaultLang = "en"

type translationKind uint8

const (
	translationAbsent translationKind = iota
	translationPlain
	translationLocalized
)

// Translation is an attribute that is either absent, a plain string that is
// the same in every language, or a map from language code to text.
type Translation struct {
	kind      translationKind
	plain     string
	localized map[string]string
}

// Plain returns a canonical, untranslated value.
func Plain(s string) Translation {
	return Translation{kind: translationPlain, plain: s}
}

// Localized returns a per-language value. The map is copied.
func Localized(m map[string]string) Translation {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Translation{kind: translationLocalized, localized: cp}
}

// IsAbsent reports whether the attribute was null or missing.
func (t Translation) IsAbsent() bool { return t.kind == translationAbsent }

// IsPlain reports whether the value is a plain string.
func (t Translation) IsPlain() bool { return t.kind == translationPlain }

// IsLocalized reports whether the value is a language map.
func (t Translation) IsLocalized() bool { return t.kind == translationLocalized }

// PlainValue returns the plain string, if the value is one.
func (t Translation) PlainValue() (string, bool) {
	return t.plain, t.kind == translationPlain
}

// Lang returns the text for one language of a localized value.
func (t Translation) Lang(lang string) (string, bool) {
	if t.kind != translationLocalized {
		return "", false
	}
	v, ok := t.localized[lang]
	return v, ok
}

// Default returns the English text of a localized value or the plain string.
func (t Translation) Default() string {
	if t.kind == translationPlain {
		return t.plain
	}
	v, _ := t.Lang(DefaultLang)
	return v
}

// Langs returns the language codes of a localized value, sorted.
func (t Translation) Langs() []string {
	if t.kind != translationLocalized {
		return nil
	}
	langs := make([]string, 0, len(t.localized))
	for lang := range t.localized {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// UnmarshalJSON maps null to absent, a string to Plain and an object to
// Localized.
func (t *Translation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Translation{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Plain(s)
		return nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("translation: %w", err)
		}
		*t = Translation{kind: translationLocalized, localized: m}
		if t.localized == nil {
			t.localized = map[string]string{}
		}
		return nil
	default:
		return fmt.Errorf("translation: unexpected JSON %s", data)
	}
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (t Translation) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case translationPlain:
		return json.Marshal(t.plain)
	case translationLocalized:
		return json.Marshal(t.localized)
	default:
		return []byte("null"), nil
	}
}
