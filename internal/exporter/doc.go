// Package exporter writes the pipeline outputs to disk: the unified
// boundary workbook, the merged trading workbook, and the metric report
// workbooks. Excel is the primary format; the boundary table can also be
// exported as UTF-8 CSV with a BOM so spreadsheet tools pick up the
// Chinese headers correctly.
package exporter
