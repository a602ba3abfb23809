// Package core holds the session logic of the data cleaning tool.
//
// A [Service] owns exactly one [Session]: the table currently loaded from
// disk, the cleaned versions produced from it and the last export. Every
// operation runs through the service so that it is serialised, logged,
// recorded in the activity history and counted in the metrics. The package
// has no knowledge of HTTP; the web layer and tests drive it directly.
//
// # Pipeline
//
//  1. [Service.Load] reads a csv, xlsx or json file into a table. For
//     workbooks the sheet names are returned so a sheet can be chosen.
//  2. [Service.Rename] renames selected columns of the loaded table.
//  3. [Service.Clean] runs the fixed cleaning pipeline of package clean and
//     caches the result as the latest cleaned version of the table.
//  4. [Service.Summary] describes the cleaned table.
//  5. [Service.Export] writes cleaned_<name> in the source format into the
//     output directory and keeps the bytes for download.
//
// # Error Handling
//
// Failures are returned as [ErrUnsupportedFormat], [*ReadError],
// [*WriteError] or one of the session errors ([ErrNoTable], [ErrNotCleaned],
// [ErrBusy], [ErrNoExport]). [MapError] turns any of them into a
// [UserMessage] with a support code:
//
//   - FILE001-FILE005: reading and format errors
//   - EXP001: export errors
//   - SES001-SES004: session state errors
//   - REN001: rename conflicts
package core
