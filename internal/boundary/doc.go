// Package boundary reconciles the nine raw spot-market report workbooks
// into one unified boundary table keyed by (date, time-slot, epoch).
//
// Each raw source has a dedicated normalizer bound to an immutable column
// contract from internal/config. The reconciler outer-joins the day-ahead
// sources, left-joins the realtime supplements onto the telemetry rows,
// broadcasts the online-capacity scalar, and emits a deterministically
// sorted sequence of domain.UnifiedRecord.
//
// Per-cell data problems degrade to nulls; a missing source workbook is
// fatal and aborts the whole run.
package boundary
