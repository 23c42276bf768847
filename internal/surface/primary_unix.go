//go:build freebsd || linux || netbsd || openbsd || solaris || dragonfly

package surface

import "github.com/atotto/clipboard"

const hasPrimary = true

func usePrimary(on bool) {
	clipboard.Primary = on
}
