package http1

import "sync"

// ReadChunkSize is the size of the buffers connections read into.
const ReadChunkSize = 4 << 10

// readPool recycles per-connection read buffers. Every connection reads a
// request through one of these, so pooling keeps short-lived connections from
// each allocating a fresh chunk.
var readPool = sync.Pool{
	New: func() any {
		buf := make([]byte, ReadChunkSize)
		return &buf
	},
}

// GetReadBuffer returns a ReadChunkSize buffer. Pair it with PutReadBuffer.
func GetReadBuffer() []byte {
	return *readPool.Get().(*[]byte)
}

// PutReadBuffer returns buf to the pool. Buffers of any other capacity are
// left to the garbage collector.
func PutReadBuffer(buf []byte) {
	if cap(buf) != ReadChunkSize {
		return
	}
	full := buf[:ReadChunkSize]
	readPool.Put(&full)
}
