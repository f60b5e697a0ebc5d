// Package core provides the workspace of open grids behind the web and CLI
// front ends.
//
// It holds no transport logic and can be driven by HTTP handlers, the CLI or
// tests without modification.
//
// # Workspace
//
// A [Service] keeps every open grid in memory under a uuid. Grids are not
// safe for concurrent use, so the service serializes access to each one
// while letting different grids be used in parallel. Grids come from
// [Service.Import] (delimited text or a workbook), [Service.Create] or a
// saved snapshot via [Service.Open].
//
// # Schemas
//
// Every column has a parser that turns text into a typed value. An import
// names its parsers either directly ("string,integer,double") or through a
// named schema registered in the [SchemaRegistry], typically loaded from
// the properties file in IMPORT_SCHEMA_FILE:
//
//	people=string,integer
//	rates=string,double,boolean
//
// [Service.SetCellText] converts through the same parser, so an edited cell
// ends up with the kind a load would have given it.
//
// # Import Limits
//
// Imports hold a slot in the [ImportLimiter] while they run. When every slot
// is taken a new import waits up to Import.MaxWaitTime and then fails with
// [ErrTooManyImports]. Bodies larger than Import.MaxSize fail with
// [ErrImportTooLarge].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - GRID001-GRID004: Grid access (not found, range, invalid request, empty cell)
//   - LOAD001-LOAD003: Loading (field count, conversion, unknown type)
//   - RES001-RES003: Resources (not found, i/o, sheet)
//   - STORE001-STORE002: Snapshot store
//   - IMP001-IMP004: Import admission and lifecycle
package core
