// Package highlight maps ordered (pattern, style) rules onto blocks of text.
//
// Rules are registered once, in order, while the engine is being built. Each
// Highlight call matches every rule against one block independently and
// resolves overlaps per character: the rule registered last wins. Offsets are
// counted in runes.
//
// Blocks carry no state between calls, so a construct that spans several
// blocks (a /* ... */ comment over three lines, say) is only recognised where
// a single block contains it whole.
package highlight
