// Qt Designer .ui form scanner.
//
// uic-generated code funnels every translatable <string> property through
// QCoreApplication.translate(<form name>, …), so the extraction context for
// a whole form is the name of its top-level widget (for FilterMate-style
// plugins that is e.g. "FilterMateDockWidgetBase").
package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// scanUIFile extracts translatable <string> properties from a .ui form.
// Strings carrying notr="true" are skipped, matching uic behavior.
func scanUIFile(path string) ([]occurrence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(string(data)))

	var occs []occurrence
	context := ""
	widgetDepth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "widget":
				widgetDepth++
				if widgetDepth == 1 {
					cls := ""
					for _, attr := range t.Attr {
						switch attr.Name.Local {
						case "name":
							context = attr.Value
						case "class":
							cls = attr.Value
						}
					}
					if context == "" {
						context = cls
					}
				}
			case "string":
				if context == "" {
					dec.Skip()
					continue
				}
				notr := false
				for _, attr := range t.Attr {
					if attr.Name.Local == "notr" && strings.EqualFold(attr.Value, "true") {
						notr = true
					}
				}
				line := lineAt(data, dec.InputOffset())
				var text strings.Builder
				if err := collectText(dec, &text); err != nil {
					return nil, fmt.Errorf("parsing %s: %w", path, err)
				}
				if notr || text.Len() == 0 {
					continue
				}
				occs = append(occs, occurrence{
					context:  context,
					source:   text.String(),
					filename: relPath(path),
					line:     line,
				})
			}
		case xml.EndElement:
			if t.Name.Local == "widget" {
				widgetDepth--
			}
		}
	}

	return occs, nil
}

// collectText reads character data until the element's close tag.
func collectText(dec *xml.Decoder, b *strings.Builder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line := 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}
