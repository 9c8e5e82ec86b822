package domain

// PageScrollRadix is the fixed number of scroll units reserved per page in
// the packed position encoding. A paginated position is stored as
// (page-1)*PageScrollRadix + offset, so the encoding only round-trips when
// no page's internal scroll extent reaches the radix. Pages that scroll
// further silently bleed into the next page number on decode; stored values
// depend on this constant, so it must not change without a migration.
const PageScrollRadix = 10000

// EncodePosition packs a 1-based page number and an intra-page scroll
// offset into a single non-negative position value. Inputs below their
// minimum are clamped rather than rejected.
func EncodePosition(page, offset int) int {
	if page < 1 {
		page = 1
	}
	if offset < 0 {
		offset = 0
	}
	return (page-1)*PageScrollRadix + offset
}

// DecodePosition unpacks a position value into its (page, offset) pair.
// Values produced by EncodePosition with offset < PageScrollRadix decode
// exactly; larger offsets are attributed to the page count.
func DecodePosition(value int) (page, offset int) {
	if value < 0 {
		value = 0
	}
	return value/PageScrollRadix + 1, value % PageScrollRadix
}
