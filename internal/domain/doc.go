// Package domain models NEXRAD Level III radar scans and the frame sequences
// rendered from them.
//
// # Data Source
//
// Scans come from the Unidata NEXRAD Level III mirror, a public S3 bucket
// holding one object per radar product scan. Object keys encode station,
// product, and acquisition time:
//
//	<SSS>_<PPP>_<YYYY>_<MM>_<DD>_<HH>_<MM>_<SS>
//	e.g. "MOB_N0B_2024_04_26_18_13_04"
//
// Because every variable component is zero-padded and ordered most-significant
// first, lexicographic order of keys equals chronological order of the
// underlying scans. That invariant is the only ordering contract in this
// codebase: every sequence of keys or frames that crosses a package boundary
// is a [Chronological] value, sorted oldest to newest. There is no
// newest-first representation anywhere, so no reversal step exists to get
// wrong.
//
// # Time Conventions
//
// All scan timestamps are UTC. The Level III message header carries the date
// as days since 1 January 1970 (where day 1 is the epoch day itself) and the
// time as seconds since midnight.
//
// Rendered frames carry a human-readable local-time label produced by a
// [DisplayOffset]: a constant UTC offset plus a zone abbreviation, e.g.
// -5h/"CDT". This is deliberately not a calendar-aware time zone conversion —
// it ignores daylight-saving transitions, matching the display convention the
// loop has always used. Do not replace it with a tzdata lookup without
// changing the policy name.
//
// # Reflectivity Data
//
// A scan's reflectivity field is radial: a set of rays, each with a start
// azimuth and angular width, holding one value per range gate. Raw data
// levels 0 (below threshold) and 1 (range folded) carry no reflectivity and
// are masked; remaining levels are converted to dBZ by the decoder using the
// scale/offset parameters from the product description block.
package domain
