package types

import "strings"

// Object types carried by identifier references. The backend resolves an
// identifier within a workspace regardless of type; the type is informative.
const (
	ObjectTypeAttribute   = "attribute"
	ObjectTypeDisplayForm = "displayForm"
	ObjectTypeMeasure     = "measure"
	ObjectTypeFact        = "fact"
	ObjectTypeDataSet     = "dataSet"
	ObjectTypeTag         = "tag"
)

// ObjRef addresses a backend object either by stable identifier or by
// backend-internal URI. The two forms are not interchangeable on the wire.
// The set of implementations is closed: IdentifierRef and URIRef.
type ObjRef interface {
	// String returns a printable form ("id:<identifier>" or "uri:<uri>").
	String() string

	objRef()
}

// IdentifierRef references an object by its stable identifier.
type IdentifierRef struct {
	Identifier string
	Type       string
}

// URIRef references an object by its backend URI.
type URIRef struct {
	URI string
}

func (IdentifierRef) objRef() {}
func (URIRef) objRef()        {}

func (r IdentifierRef) String() string { return "id:" + r.Identifier }
func (r URIRef) String() string        { return "uri:" + r.URI }

// IDRef is shorthand for an IdentifierRef of the given type.
func IDRef(identifier, objectType string) IdentifierRef {
	return IdentifierRef{Identifier: identifier, Type: objectType}
}

// URIRefOf is shorthand for a URIRef.
func URIRefOf(uri string) URIRef {
	return URIRef{URI: uri}
}

// IsIdentifierRef reports whether ref is an IdentifierRef.
func IsIdentifierRef(ref ObjRef) bool {
	_, ok := ref.(IdentifierRef)
	return ok
}

// IsURIRef reports whether ref is a URIRef.
func IsURIRef(ref ObjRef) bool {
	_, ok := ref.(URIRef)
	return ok
}

// RefsEqual reports whether two references address the same object using the
// same addressing scheme. Identifier references compare by identifier only.
func RefsEqual(a, b ObjRef) bool {
	switch ra := a.(type) {
	case IdentifierRef:
		rb, ok := b.(IdentifierRef)
		return ok && ra.Identifier == rb.Identifier
	case URIRef:
		rb, ok := b.(URIRef)
		return ok && ra.URI == rb.URI
	}
	return false
}

// ParseRef parses the textual form produced by String. Input without a
// recognised prefix is a URI when it starts with "/gdc/", otherwise an
// identifier of the given default type.
func ParseRef(s, defaultType string) (ObjRef, error) {
	switch {
	case s == "":
		return nil, ErrInvalidRef
	case strings.HasPrefix(s, "uri:"):
		if len(s) == len("uri:") {
			return nil, ErrInvalidRef
		}
		return URIRef{URI: strings.TrimPrefix(s, "uri:")}, nil
	case strings.HasPrefix(s, "id:"):
		if len(s) == len("id:") {
			return nil, ErrInvalidRef
		}
		return IdentifierRef{Identifier: strings.TrimPrefix(s, "id:"), Type: defaultType}, nil
	case strings.HasPrefix(s, "/gdc/"):
		return URIRef{URI: s}, nil
	}
	return IdentifierRef{Identifier: s, Type: defaultType}, nil
}
