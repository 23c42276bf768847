// Package surface puts a termio.Widget on a real terminal through tcell.
//
// A Surface paints delivered frames and turns tcell input into widget
// calls:
//
//	scr, _ := tcell.NewScreen()
//	s := surface.New(scr, surface.WithPalette(theme.Default()))
//	w := termio.New(buf, termio.OnFrame(s.Draw))
//	err := s.Run(ctx, w)
//
// Clipboard adapts the system clipboard to termio.Clipboard. PRIMARY is
// the X selection where the platform has one and an in-process buffer
// elsewhere.
package surface
