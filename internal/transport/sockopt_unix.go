//go:build unix

package transport

import "syscall"

func setReuseAddr(network, address string, rawConn syscall.RawConn) error {
	var err error
	ctlErr := rawConn.Control(func(fd uintptr) {
		err = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if ctlErr != nil {
		return ctlErr
	}
	return err
}
