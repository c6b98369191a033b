package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const samplePy = `# -*- coding: utf-8 -*-
from qgis.PyQt.QtCore import QCoreApplication


class FilterMate:
    def run(self):
        self.show_message(self.tr("Reset Configuration"))
        self.show_message(self.tr('Database deleted: {filename}'))

    def notify(self):
        return QCoreApplication.translate("OptimizationDialog", "Materialized Views")


def module_level():
    return QCoreApplication.translate('dw', 'Two-Phase Filtering')
`

func TestScanPython_ClassContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filter_mate.py", samplePy)

	occs, err := scanPythonFile(path, "FilterMatePlugin")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("occurrences: got %d, want 4: %+v", len(occs), occs)
	}

	if occs[0].context != "FilterMate" || occs[0].source != "Reset Configuration" {
		t.Errorf("occ[0]: %+v", occs[0])
	}
	if occs[0].line != 7 {
		t.Errorf("occ[0] line: got %d, want 7", occs[0].line)
	}
	if occs[1].source != "Database deleted: {filename}" {
		t.Errorf("occ[1]: %+v", occs[1])
	}
	if occs[2].context != "OptimizationDialog" || occs[2].source != "Materialized Views" {
		t.Errorf("occ[2]: %+v", occs[2])
	}
	if occs[3].context != "dw" || occs[3].source != "Two-Phase Filtering" {
		t.Errorf("occ[3]: %+v", occs[3])
	}
}

func TestScanPython_NestedClassAndEscapes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widgets.py", `class Outer:
    class Inner:
        def f(self):
            return self.tr("line one\nline two")

    def g(self):
        return self.tr('it\'s here')
`)

	occs, err := scanPythonFile(path, "fallback")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("occurrences: got %d: %+v", len(occs), occs)
	}
	if occs[0].context != "Inner" || occs[0].source != "line one\nline two" {
		t.Errorf("occ[0]: %+v", occs[0])
	}
	if occs[1].context != "Outer" || occs[1].source != "it's here" {
		t.Errorf("occ[1]: %+v", occs[1])
	}
}

func TestScanPython_IgnoresNonTrCalls(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "misc.py", `class C:
    def f(self):
        x = str("not translatable")
        y = attr("also not")
        return self.tr("real one")
`)
	occs, err := scanPythonFile(path, "fallback")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(occs) != 1 || occs[0].source != "real one" {
		t.Errorf("got %+v, want only the tr() literal", occs)
	}
}

const sampleUI = `<?xml version="1.0" encoding="UTF-8"?>
<ui version="4.0">
 <class>FilterMateDockWidgetBase</class>
 <widget class="QDockWidget" name="FilterMateDockWidgetBase">
  <property name="windowTitle">
   <string>FilterMate</string>
  </property>
  <widget class="QPushButton" name="pushButton_export">
   <property name="text">
    <string>Export</string>
   </property>
   <property name="toolTip">
    <string>Two-Phase Filtering</string>
   </property>
   <property name="objectName">
    <string notr="true">pushButton_export</string>
   </property>
  </widget>
 </widget>
</ui>
`

func TestScanUI(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filter_mate_dockwidget_base.ui", sampleUI)

	occs, err := scanUIFile(path)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("occurrences: got %d: %+v", len(occs), occs)
	}
	for _, occ := range occs {
		if occ.context != "FilterMateDockWidgetBase" {
			t.Errorf("context: got %q", occ.context)
		}
	}
	if occs[0].source != "FilterMate" || occs[1].source != "Export" || occs[2].source != "Two-Phase Filtering" {
		t.Errorf("sources: %+v", occs)
	}
}

func TestRun_BuildsTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "filter_mate.py", samplePy)
	writeFile(t, dir, "ui/dock.ui", sampleUI)
	writeFile(t, dir, "__pycache__/junk.py", `self.tr("must not appear")`)

	res, err := Run([]string{dir}, "FilterMatePlugin")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	tpl := res.Template
	if c := tpl.Context("FilterMate"); c == nil || len(c.Messages) != 2 {
		t.Fatalf("FilterMate context: %+v", tpl.Contexts)
	}
	if c := tpl.Context("FilterMateDockWidgetBase"); c == nil || len(c.Messages) != 3 {
		t.Fatalf("ui context missing: %+v", tpl.Contexts)
	}

	// Everything extracted starts unfinished.
	total, finished, unfinished, _ := tpl.Stats()
	if finished != 0 || unfinished != total {
		t.Errorf("template stats: total=%d finished=%d unfinished=%d", total, finished, unfinished)
	}
	if res.Strings != total {
		t.Errorf("Strings = %d, want %d", res.Strings, total)
	}

	// Skip dir honored.
	for _, c := range tpl.Contexts {
		for _, m := range c.Messages {
			if m.Source == "must not appear" {
				t.Error("__pycache__ content extracted")
			}
		}
	}
}

func TestRun_DuplicateOccurrencesCollapse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", `class FilterMate:
    def f(self):
        return self.tr("Apply")
`)
	writeFile(t, dir, "b.py", `class FilterMate:
    def g(self):
        return self.tr("Apply")
`)

	res, err := Run([]string{dir}, "x")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	c := res.Template.Context("FilterMate")
	if c == nil || len(c.Messages) != 1 {
		t.Fatalf("duplicates not collapsed: %+v", c)
	}
	if len(c.Messages[0].Locations) != 2 {
		t.Errorf("locations: got %d, want 2", len(c.Messages[0].Locations))
	}
}
