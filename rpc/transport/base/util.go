package base

import (
	"encoding/binary"
	"io"
	"net"
)

// frameHeaderSize is the fixed header preceding every frame: shard ID
// (8 bytes) + request ID (8 bytes) + payload length (4 bytes), big endian.
const frameHeaderSize = 20

// writeFrame sends one frame. Header and payload go out in a single writev
// via net.Buffers, so small responses cost one syscall.
func writeFrame(conn net.Conn, shardID, requestID uint64, payload []byte) error {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint64(header[:8], shardID)
	binary.BigEndian.PutUint64(header[8:16], requestID)
	binary.BigEndian.PutUint32(header[16:20], uint32(len(payload)))

	buffers := net.Buffers{header, payload}
	_, err := buffers.WriteTo(conn)
	return err
}

// readFrame reads one frame into buf, allocating a larger buffer when the
// payload does not fit. The returned payload aliases the buffer it was read
// into and is only valid until that buffer is reused.
func readFrame(conn net.Conn, buf []byte) (shardID, requestID uint64, payload []byte, err error) {
	if len(buf) < frameHeaderSize {
		buf = make([]byte, frameHeaderSize)
	}

	if _, err := io.ReadFull(conn, buf[:frameHeaderSize]); err != nil {
		return 0, 0, nil, err
	}

	shardID = binary.BigEndian.Uint64(buf[:8])
	requestID = binary.BigEndian.Uint64(buf[8:16])
	payloadLen := binary.BigEndian.Uint32(buf[16:20])

	if payloadLen == 0 {
		return shardID, requestID, []byte{}, nil
	}

	if len(buf) < int(payloadLen) {
		buf = make([]byte, payloadLen)
	}

	if _, err := io.ReadFull(conn, buf[:payloadLen]); err != nil {
		return 0, 0, nil, err
	}

	return shardID, requestID, buf[:payloadLen], nil
}
