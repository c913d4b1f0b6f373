// Package diagnostic accumulates data-quality findings produced while
// extracting BT placements, for manual review.
//
// A Diagnostics value is created at run start, passed through every
// pipeline stage, and flushed at run end. Findings are:
//   - level/element alignment anomalies (warning), including soft line
//     breaks collapsed in descriptive text (info, code soft-break-collapsed)
//   - structural violations that abort the run (error)
package diagnostic
