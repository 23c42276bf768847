// Package theme maps terminal color indices to concrete colors.
//
// The indexed palette has 96 entries in eight sets of twelve:
//
//	0   normal              (default, black..white, invisible, inverse, inverse-bg)
//	12  bold
//	24  faint
//	36  bold + faint
//	48  intense
//	60  intense + bold
//	72  intense + faint
//	84  intense + bold + faint
//
// Extended colors (SGR 38;5 / 48;5) index the usual 256-color table and are
// never offset.
package theme
