// Package core provides the business logic for marketplace price exports.
//
// This package validates product pricing sheets and writes the valid rows in
// the marketplace import template layout. It has no knowledge of HTTP or the
// command line, so web handlers, the CLI and tests all use it the same way.
//
// # Architecture
//
//   - RowValidator: ordered pricing rules over one row, first failure wins.
//   - ExportPipeline: classifies rows in input order and writes the accepted
//     ones to a [Sink]. Rejected rows are returned, never written implicitly.
//   - Service: entry point for callers. Reads the uploaded sheet, bounds
//     concurrent runs with an [ExportLimiter] and drives the pipeline.
//
// # Export Flow
//
//  1. [ReadTable] parses the .csv or .xlsx upload and finds the header row
//  2. [Table.SourceRows] maps product columns to [SourceRow] values
//  3. [ExportPipeline.Run] validates every row and writes the template file
//  4. The caller inspects [ExportResult.Rejected] and may ask for a report
//     with [ExportPipeline.WriteReport]
//
// # Row Rules
//
//	EmptySku        SKU cell is blank
//	EmptyName       product name cell is blank
//	InvalidPrice    listed price is blank or not a number
//	PriceBelowCost  cost is a number and the price is strictly lower
//
// # Error Handling
//
// Bad rows never fail a run. Run-level problems return a [*PipelineError]
// wrapping one of [ErrSourceUnreadable], [ErrMissingColumns],
// [ErrOutputUnwritable] or [ErrRunCancelled]. [MapError] turns any error into
// a coded [UserMessage] for display:
//
//   - PIPE001-PIPE004: pipeline kinds
//   - FILE001-FILE005: upload problems (size, format, empty)
//   - EXP001-EXP002: export limits and options
package core
