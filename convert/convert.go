// Package convert maps TS catalogs to gettext PO files and back, so
// catalogs can pass through PO-based tooling and translator platforms
// without losing contexts, statuses, or source references.
//
// The mapping follows what Qt's lconvert produces: the TS context name
// becomes msgctxt, locations become "#:" references, the unfinished
// status becomes the fuzzy flag, and obsolete messages become "#~"
// entries. Numerus messages map to msgid_plural with one msgstr[N] per
// form.
package convert

import (
	"fmt"

	"github.com/linguakit/tskit/pofile"
	ts "github.com/linguakit/tskit/tsfile"
)

// TSToPO converts a TS catalog into a PO file. project names the
// originating project in the PO header.
func TSToPO(f *ts.File, project string) *pofile.File {
	po := pofile.NewFile()
	po.Header = pofile.MakeHeader(project, f.Language, f.SourceLanguage)

	for _, ctx := range f.Contexts {
		for _, msg := range ctx.Messages {
			entry := &pofile.Entry{
				MsgCtxt:  ctx.Name,
				MsgID:    msg.Source,
				Obsolete: msg.IsObsolete(),
			}
			for _, loc := range msg.Locations {
				entry.References = append(entry.References, fmt.Sprintf("%s:%d", loc.Filename, loc.Line))
			}
			if msg.Comment != "" {
				entry.ExtractedComments = append(entry.ExtractedComments, msg.Comment)
			}
			if msg.Numerus {
				entry.MsgIDPlural = msg.Source
				entry.MsgStrPlural = make(map[int]string, len(msg.NumerusForms))
				for i, form := range msg.NumerusForms {
					entry.MsgStrPlural[i] = form
				}
			} else {
				entry.MsgStr = msg.Translation
			}
			if msg.Type == ts.TypeUnfinished && hasText(msg) {
				entry.SetFuzzy(true)
			}
			po.Entries = append(po.Entries, entry)
		}
	}
	return po
}

// POToTS converts a PO file into a TS catalog. The language comes from
// the PO header; language overrides it when non-empty. Entries without
// msgctxt land in fallbackContext.
func POToTS(po *pofile.File, language, fallbackContext string) *ts.File {
	if language == "" {
		language = po.HeaderField("Language")
	}
	f := ts.NewFile(language)
	if src := po.HeaderField("X-Source-Language"); src != "" {
		f.SourceLanguage = src
	}

	for _, entry := range po.Entries {
		if entry.MsgID == "" {
			continue
		}
		ctxName := entry.MsgCtxt
		if ctxName == "" {
			ctxName = fallbackContext
		}
		msg := &ts.Message{Source: entry.MsgID}
		for _, ref := range entry.References {
			if loc, ok := parseReference(ref); ok {
				msg.Locations = append(msg.Locations, loc)
			}
		}
		if len(entry.ExtractedComments) > 0 {
			msg.Comment = entry.ExtractedComments[0]
		}
		if entry.MsgIDPlural != "" {
			msg.Numerus = true
			msg.NumerusForms = make([]string, len(entry.MsgStrPlural))
			for i := range msg.NumerusForms {
				msg.NumerusForms[i] = entry.MsgStrPlural[i]
			}
		} else {
			msg.Translation = entry.MsgStr
		}
		switch {
		case entry.Obsolete:
			msg.Type = ts.TypeObsolete
		case entry.IsFuzzy(), !filled(msg):
			msg.Type = ts.TypeUnfinished
		}
		ctx := f.EnsureContext(ctxName)
		ctx.Messages = append(ctx.Messages, msg)
	}
	return f
}

func hasText(msg *ts.Message) bool {
	if msg.Numerus {
		for _, form := range msg.NumerusForms {
			if form != "" {
				return true
			}
		}
		return false
	}
	return msg.Translation != ""
}

func filled(msg *ts.Message) bool {
	if msg.Numerus {
		if len(msg.NumerusForms) == 0 {
			return false
		}
		for _, form := range msg.NumerusForms {
			if form == "" {
				return false
			}
		}
		return true
	}
	return msg.Translation != ""
}

// parseReference splits "path/to/file.py:512" into a location. PO
// references may carry several "file:line" pairs on one line separated
// by spaces; callers get one reference string per pair already, so only
// the single form is handled here.
func parseReference(ref string) (ts.Location, bool) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == ':' {
			var line int
			if _, err := fmt.Sscanf(ref[i+1:], "%d", &line); err != nil {
				return ts.Location{}, false
			}
			return ts.Location{Filename: ref[:i], Line: line}, true
		}
	}
	return ts.Location{}, false
}
