// Package media classifies embedded media sources and describes how a
// media object is displayed inside a block.
//
// Classification is by file extension, case-insensitive, on the path part
// of the source (URL query and fragment are ignored):
//
//	media.Classify("/tmp/a.PNG")              // media.TypeImage
//	media.Classify("https://x/y.mp4?t=3")     // media.TypeMovie
//	media.Classify("notes.txt")               // media.TypeUnknown
package media
