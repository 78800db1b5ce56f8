// Package io reads portfolios and record sets from files and exports
// computed layouts to spreadsheets.
//
// # Portfolio Formats
//
// [ImportPortfolio] picks a decoder by file extension:
//
//   - .json: {"name": "...", "currency": "USD", "positions": [{...}]}
//     or a bare array of positions
//   - .toml: name/currency keys and a [[positions]] array of tables
//   - .csv: a header row followed by one position per line
//   - .xlsx: the first sheet, laid out like the CSV format
//
// Tabular formats recognize these header columns, case-insensitively and in
// any order: symbol, name, sector, quantity (qty, shares), price, and
// cost_basis (cost, basis). Symbol, quantity and price are required. Number
// parse failures report the row and column:
//
//	INVALID_INPUT: row 4, column "price": invalid number "12.5x"
//
// # Records
//
// [ReadRecords] decodes a JSON array of arbitrary objects for the generic
// squarify endpoint. Numbers are kept as json.Number so that echoed fields
// round-trip without float formatting changes.
//
// # Export
//
// [WriteLayoutXLSX] writes one row per heatmap cell, with the cell's fill
// color applied to its row, so a layout can be inspected in a spreadsheet.
package io
