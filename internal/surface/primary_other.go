//go:build !(freebsd || linux || netbsd || openbsd || solaris || dragonfly)

package surface

const hasPrimary = false

func usePrimary(bool) {}
