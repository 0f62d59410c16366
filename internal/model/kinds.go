package model

import "github.com/ziadkadry99/compatbrowse/internal/jsonapi"

// Kind ties a type key to its plural path name and decoder.
type Kind[T Record] struct {
	Type   string
	Plural string
	Decode func(jsonapi.Resource) (T, error)
}

var (
	BrowserKind       = Kind[Browser]{Type: TypeBrowser, Plural: "browsers", Decode: DecodeBrowser}
	VersionKind       = Kind[Version]{Type: TypeVersion, Plural: "versions", Decode: DecodeVersion}
	FeatureKind       = Kind[Feature]{Type: TypeFeature, Plural: "features", Decode: DecodeFeature}
	SupportKind       = Kind[Support]{Type: TypeSupport, Plural: "supports", Decode: DecodeSupport}
	MaturityKind      = Kind[Maturity]{Type: TypeMaturity, Plural: "maturities", Decode: DecodeMaturity}
	SpecificationKind = Kind[Specification]{Type: TypeSpecification, Plural: "specifications", Decode: DecodeSpecification}
	SectionKind       = Kind[Section]{Type: TypeSection, Plural: "sections", Decode: DecodeSection}
)

// TypeKeys lists every browsable type key in navigation order.
var TypeKeys = []string{
	TypeBrowser,
	TypeVersion,
	TypeFeature,
	TypeSupport,
	TypeSpecification,
	TypeMaturity,
	TypeSection,
}

// Plurals maps each type key to its plural path name.
var Plurals = map[string]string{
	TypeBrowser:       BrowserKind.Plural,
	TypeVersion:       VersionKind.Plural,
	TypeFeature:       FeatureKind.Plural,
	TypeSupport:       SupportKind.Plural,
	TypeMaturity:      MaturityKind.Plural,
	TypeSpecification: SpecificationKind.Plural,
	TypeSection:       SectionKind.Plural,
}
