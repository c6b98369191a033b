// Package merge updates a TS catalog from a freshly extracted template,
// equivalent to what lupdate does for Qt projects.
package merge

import (
	ts "github.com/linguakit/tskit/tsfile"
)

// Merge updates a catalog with messages from a template.
//   - Messages present in both keep their translation and status; locations
//     are refreshed from the template.
//   - Template-only messages are added as unfinished.
//   - Catalog-only messages are marked obsolete (locations cleared).
//
// The operation is idempotent: merging an unchanged template against its
// own output adds no unfinished entries and retires nothing new.
func Merge(catalog, template *ts.File) *ts.File {
	result := ts.NewFile(catalog.Language)
	result.Version = catalog.Version
	if result.Version == "" {
		result.Version = template.Version
	}
	if catalog.SourceLanguage != "" {
		result.SourceLanguage = catalog.SourceLanguage
	} else {
		result.SourceLanguage = template.SourceLanguage
	}

	matched := make(map[string]bool) // context\x04source

	// Template order drives output order, so regenerated catalogs follow
	// extraction order the way lupdate output does.
	for _, tc := range template.Contexts {
		rc := result.EnsureContext(tc.Name)
		cc := catalog.Context(tc.Name)
		for _, tm := range tc.Messages {
			if tm.IsObsolete() {
				continue
			}
			merged := &ts.Message{
				Locations: append([]ts.Location(nil), tm.Locations...),
				Source:    tm.Source,
				Comment:   tm.Comment,
				Numerus:   tm.Numerus,
				Type:      ts.TypeUnfinished,
			}
			if cc != nil {
				if existing := cc.MessageBySource(tm.Source); existing != nil {
					merged.Translation = existing.Translation
					merged.NumerusForms = append([]string(nil), existing.NumerusForms...)
					merged.Type = existing.Type
					matched[key(tc.Name, tm.Source)] = true
				} else if retired := obsoleteBySource(cc, tm.Source); retired != nil {
					// A previously retired string came back: revive its old
					// translation but leave it unfinished for review.
					merged.Translation = retired.Translation
					merged.NumerusForms = append([]string(nil), retired.NumerusForms...)
					matched[key(tc.Name, tm.Source)] = true
				}
			}
			rc.Messages = append(rc.Messages, merged)
		}
	}

	// Retire catalog messages the template no longer contains. Already
	// obsolete entries are carried over unchanged unless they were revived.
	for _, cc := range catalog.Contexts {
		for _, cm := range cc.Messages {
			if matched[key(cc.Name, cm.Source)] {
				continue
			}
			retired := *cm
			if !retired.IsObsolete() {
				retired.Type = ts.TypeObsolete
			}
			retired.Locations = nil
			rc := result.EnsureContext(cc.Name)
			rc.Messages = append(rc.Messages, &retired)
		}
	}

	return result
}

func key(context, source string) string {
	return context + "\x04" + source
}

// obsoleteBySource finds a retired message with the given source, or nil.
func obsoleteBySource(c *ts.Context, source string) *ts.Message {
	for _, m := range c.Messages {
		if m.Source == source && m.IsObsolete() {
			return m
		}
	}
	return nil
}
