package transport

import "sync"

const (
	smallBufferSize  = 1024   // default receive chunk
	mediumBufferSize = 32768  // header blocks
	largeBufferSize  = 131072 // paced send chunks up to 128KB
)

// bufferPool hands out reusable read buffers in three size classes.
type bufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

var globalBufferPool = &bufferPool{
	small: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallBufferSize)
			return &buf
		},
	},
	medium: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, mediumBufferSize)
			return &buf
		},
	},
	large: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, largeBufferSize)
			return &buf
		},
	},
}

// getBuffer returns a buffer of exactly size bytes, pooled when size fits a
// class.
func getBuffer(size int) []byte {
	switch {
	case size <= smallBufferSize:
		buf := globalBufferPool.small.Get().(*[]byte)
		return (*buf)[:size]
	case size <= mediumBufferSize:
		buf := globalBufferPool.medium.Get().(*[]byte)
		return (*buf)[:size]
	case size <= largeBufferSize:
		buf := globalBufferPool.large.Get().(*[]byte)
		return (*buf)[:size]
	default:
		return make([]byte, size)
	}
}

// putBuffer returns a buffer obtained from getBuffer. Oversized buffers are
// left to the GC.
func putBuffer(buf []byte) {
	switch cap(buf) {
	case smallBufferSize:
		full := buf[:smallBufferSize]
		globalBufferPool.small.Put(&full)
	case mediumBufferSize:
		full := buf[:mediumBufferSize]
		globalBufferPool.medium.Put(&full)
	case largeBufferSize:
		full := buf[:largeBufferSize]
		globalBufferPool.large.Put(&full)
	}
}
