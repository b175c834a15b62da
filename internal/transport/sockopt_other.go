//go:build !unix

package transport

import "syscall"

// Non-unix platforms keep the runtime's default socket options.
func setReuseAddr(network, address string, rawConn syscall.RawConn) error {
	return nil
}
