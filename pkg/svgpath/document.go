package svgpath

import (
	"fmt"
	"io"
	"strings"
)

// Document accumulates SVG elements and writes a standalone document. It is a
// serializer only; draw order is the order elements were added.
type Document struct {
	Width    int
	Height   int
	defs     []string
	elements []string
}

// PathStyle carries the presentation attributes for one path element. Zero
// values mean "omit the attribute".
type PathStyle struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
	EvenOdd     bool
	Opacity     float64
}

func NewDocument(width, height int) *Document {
	return &Document{Width: width, Height: height}
}

// AddPath appends a path element with the given path data.
func (d *Document) AddPath(data string, style PathStyle) {
	var b strings.Builder
	fmt.Fprintf(&b, `<path d="%s"`, data)
	if style.Fill != "" {
		fmt.Fprintf(&b, ` fill="%s"`, style.Fill)
	} else {
		b.WriteString(` fill="none"`)
	}
	if style.EvenOdd {
		b.WriteString(` fill-rule="evenodd"`)
	}
	if style.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s"`, style.Stroke)
	}
	if style.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke-width="%s"`, formatNumber(style.StrokeWidth))
	}
	if style.Opacity > 0 && style.Opacity < 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, formatNumber(style.Opacity))
	}
	b.WriteString("/>")
	d.elements = append(d.elements, b.String())
}

// AddCircle appends a filled circle element.
func (d *Document) AddCircle(cx, cy, r float64, fill string, opacity float64) {
	var b strings.Builder
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"`,
		formatNumber(cx), formatNumber(cy), formatNumber(r), fill)
	if opacity > 0 && opacity < 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, formatNumber(opacity))
	}
	b.WriteString("/>")
	d.elements = append(d.elements, b.String())
}

// AddLinearGradient registers a two-stop gradient definition and returns the
// fill/stroke reference for it.
func (d *Document) AddLinearGradient(x1, y1, x2, y2 float64, from, to string) string {
	id := fmt.Sprintf("grad%d", len(d.defs))
	d.defs = append(d.defs, fmt.Sprintf(
		`<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`+
			`<stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient>`,
		id, formatNumber(x1), formatNumber(y1), formatNumber(x2), formatNumber(y2), from, to))
	return "url(#" + id + ")"
}

// WriteTo writes the complete SVG document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		d.Width, d.Height, d.Width, d.Height)
	b.WriteString("\n")
	if len(d.defs) > 0 {
		b.WriteString("<defs>")
		for _, def := range d.defs {
			b.WriteString(def)
		}
		b.WriteString("</defs>\n")
	}
	for _, el := range d.elements {
		b.WriteString(el)
		b.WriteString("\n")
	}
	b.WriteString("</svg>\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
