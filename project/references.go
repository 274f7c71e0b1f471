// Package project reads package references out of MSBuild project files.
package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// PackageReferenceXPath selects every reference element, at any depth.
const PackageReferenceXPath = "//PackageReference"

var (
	// ErrInvalidProject is returned when the source is not well-formed XML.
	ErrInvalidProject = errors.New("invalid project file")

	// ErrMissingInclude is returned when a PackageReference has no Include attribute.
	ErrMissingInclude = errors.New("package reference missing Include attribute")
)

// MalformedReferenceError identifies the offending element by its 1-based
// position among the file's PackageReference elements.
type MalformedReferenceError struct {
	Ordinal int
	Element string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("package reference #%d %s: %v", e.Ordinal, e.Element, ErrMissingInclude)
}

func (e *MalformedReferenceError) Unwrap() error { return ErrMissingInclude }

// PackageReferenceNames returns the Include attribute of every
// PackageReference element in document order. Duplicates are kept.
func PackageReferenceNames(source string) ([]string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}

	nodes, err := xmlquery.QueryAll(doc, PackageReferenceXPath)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", PackageReferenceXPath, err)
	}

	names := make([]string, 0, len(nodes))
	for i, node := range nodes {
		name, ok := includeOf(node)
		if !ok {
			return nil, &MalformedReferenceError{Ordinal: i + 1, Element: describe(node)}
		}
		names = append(names, name)
	}
	return names, nil
}

func includeOf(node *xmlquery.Node) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Name.Local == "Include" && attr.Name.Space == "" {
			return attr.Value, true
		}
	}
	return "", false
}

// describe renders the element's attributes for error messages.
func describe(node *xmlquery.Node) string {
	var b strings.Builder
	b.WriteString("<" + node.Data)
	for _, attr := range node.Attr {
		fmt.Fprintf(&b, " %s=%q", attr.Name.Local, attr.Value)
	}
	b.WriteString("/>")
	return b.String()
}
