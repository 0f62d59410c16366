// Package presenter derives display strings and HTML fragments from model
// records. Fragments are unsanitised; callers sanitise them before emitting.
package presenter

import (
	"html"
	"strconv"
	"strings"

	"github.com/ziadkadry99/compatbrowse/internal/model"
)

// NoneHTML marks an empty value.
const NoneHTML = "<em>none</em>"

// LangValue is one entry of a translation.
type LangValue struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// RelatedCount returns the number of related ids without loading them.
func RelatedCount(rel model.HasMany) int {
	return rel.Len()
}

// CountText renders "1 Version" or "3 Versions". An explicit plural
// replaces the default of singular + "s".
func CountText(count int, singular string, plural ...string) string {
	if count == 1 {
		return "1 " + singular
	}
	p := singular + "s"
	if len(plural) > 0 && plural[0] != "" {
		p = plural[0]
	}
	return strconv.Itoa(count) + " " + p
}

// OptionalHTML returns s, or NoneHTML when s is empty.
func OptionalHTML(s string) string {
	if s == "" {
		return NoneHTML
	}
	return s
}

// TranslationDefaultHTML renders the default text of a translation. Plain
// values are shown as code; localized values show the English entry.
func TranslationDefaultHTML(t model.Translation) string {
	if t.IsAbsent() {
		return NoneHTML
	}
	if v, ok := t.PlainValue(); ok {
		if v == "" {
			return NoneHTML
		}
		return "<code>" + v + "</code>"
	}
	v, _ := t.Lang(model.DefaultLang)
	return v
}

// TranslationArray lists a localized value with English first and the other
// languages sorted by code. Absent and plain values give an empty slice.
func TranslationArray(t model.Translation) []LangValue {
	out := []LangValue{}
	if !t.IsLocalized() {
		return out
	}
	if v, ok := t.Lang(model.DefaultLang); ok {
		out = append(out, LangValue{Lang: model.DefaultLang, Value: v})
	}
	for _, lang := range t.Langs() {
		if lang == model.DefaultLang {
			continue
		}
		v, _ := t.Lang(lang)
		out = append(out, LangValue{Lang: lang, Value: v})
	}
	return out
}

// TranslationListHTML renders a translation array as an unordered list.
func TranslationListHTML(items []LangValue) string {
	if len(items) == 0 {
		return NoneHTML
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(item.Lang)
		b.WriteString(": ")
		b.WriteString(item.Value)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// FlagsHTML lists the notable status flags of a feature in bold. The bold
// items are separated by ", " so adjacent flags stay readable.
func FlagsHTML(f model.Feature) string {
	var flags []string
	if f.Experimental {
		flags = append(flags, "experimental")
	}
	if !f.Stable {
		flags = append(flags, "not stable")
	}
	if !f.Standardized {
		flags = append(flags, "not standardized")
	}
	if f.Obsolete {
		flags = append(flags, "obsolete")
	}
	if len(flags) == 0 {
		return NoneHTML
	}
	return "<b>" + strings.Join(flags, "</b>, <b>") + "</b>"
}

// MDNBaseURL prefixes feature MDN paths.
const MDNBaseURL = "https://developer.mozilla.org/"

// MDNLinkHTML links a feature to the compatibility section of its MDN page.
func MDNLinkHTML(mdnPath string) string {
	if mdnPath == "" {
		return "<em>no link</em>"
	}
	href := MDNBaseURL + mdnPath + "#Browser_compatibility"
	return `<a href="` + html.EscapeString(href) + `">` + mdnPath + "</a>"
}

// PrefixHTML renders a vendor prefix and whether it is required.
func PrefixHTML(prefix string, mandatory bool) string {
	return codeWithRequirement(prefix, mandatory)
}

// AlternateNameHTML renders an alternate name and whether it is required.
func AlternateNameHTML(name string, mandatory bool) string {
	return codeWithRequirement(name, mandatory)
}

func codeWithRequirement(v string, mandatory bool) string {
	if v == "" {
		return NoneHTML
	}
	if mandatory {
		return "<code>" + v + "</code> (required)"
	}
	return "<code>" + v + "</code> (optional)"
}

// RequiredConfigHTML renders the configuration a support needs, noting the
// default configuration.
func RequiredConfigHTML(required, def string) string {
	if required == "" {
		return NoneHTML
	}
	out := "<code>" + required + "</code> ("
	if def == required {
		return out + "<em>default config</em>)"
	}
	return out + "default is <code>" + def + "</code>)"
}

// VersionHTML renders a version number.
func VersionHTML(version string) string {
	if version == "" {
		return "<em>unspecified</em>"
	}
	return version
}

// FullVersionHTML renders a version with its browser's name.
func FullVersionHTML(browserName, version string) string {
	v := version
	if v == "" {
		v = "(<em>unspecified version</em>)"
	}
	if browserName == "" {
		return v
	}
	return browserName + " " + v
}

// URIDefaultHTML links the English URI of a specification to its name.
func URIDefaultHTML(uri, name model.Translation) string {
	href := uri.Default()
	if href == "" {
		return NoneHTML
	}
	text := name.Default()
	if text == "" {
		text = href
	}
	return `<a href="` + html.EscapeString(href) + `">` + text + "</a>"
}

// URIListHTML lists every translated URI of a specification, labelled with
// the name in the same language or the English name in parentheses.
func URIListHTML(uri, name model.Translation) string {
	items := TranslationArray(uri)
	if len(items) == 0 {
		return NoneHTML
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(item.Lang)
		b.WriteString(`: <a href="`)
		b.WriteString(html.EscapeString(item.Value))
		b.WriteString(`">`)
		if v, ok := name.Lang(item.Lang); ok {
			b.WriteString(v)
		} else {
			b.WriteString("(" + name.Default() + ")")
		}
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
