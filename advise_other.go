//go:build !linux

package sift

// adviseWillNeed is a no-op on non-Linux platforms.
func adviseWillNeed(data []byte) {
	// No-op
}
