// Package intermediate stores analyzed pages between link extraction and
// graph import, as a bzip2-compressed stream of short XML tags.
package intermediate

// Element names of the stream. Flag elements are written only when set.
const (
	tagDocument   = "d"
	tagPage       = "p"
	tagTitle      = "t"
	tagID         = "i"
	tagNamespace  = "n"
	tagRedirect   = "r"
	tagDisambig   = "g"
	tagLink       = "l"
	tagTarget     = "lt"
	tagAnchor     = "a"
	tagRank       = "k"
	tagOffset     = "o"
	tagOccurrence = "c"
	tagInfobox    = "ib"
	tagIntro      = "in"
	tagDisambLink = "dl"
)
