package firehose

import (
	"context"
	"fmt"

	"github.com/moffa90/go-firehose/transport"
)

// Downloader streams raw data after a program command. It owns one chunk
// buffer of MaxTx bytes that is reused across chunks and downloads.
type Downloader struct {
	conn  transport.Conn
	maxTx int
	buf   []byte
}

// NewDownloader creates a Downloader that sends chunks of at most maxTx bytes.
func NewDownloader(conn transport.Conn, maxTx int) *Downloader {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if maxTx <= 0 {
		maxTx = transport.DefaultMaxTx
	}
	return &Downloader{conn: conn, maxTx: maxTx}
}

// MaxTx returns the chunk size.
func (d *Downloader) MaxTx() int {
	return d.maxTx
}

// SetMaxTx changes the chunk size, typically after configure renegotiation.
func (d *Downloader) SetMaxTx(n int) {
	if n > 0 && n != d.maxTx {
		d.maxTx = n
		d.buf = nil
	}
}

// Chunks returns the number of chunks needed for total bytes.
func (d *Downloader) Chunks(total int64) int {
	return int((total + int64(d.maxTx) - 1) / int64(d.maxTx))
}

// Download sends exactly total bytes: data followed by zero padding. Each
// chunk is at most MaxTx bytes. report, if not nil, is called with (i, n)
// after chunk i of n has been sent.
//
// The completion response is not read here.
func (d *Downloader) Download(ctx context.Context, data []byte, total int64, report func(current, total int)) error {
	if total < int64(len(data)) {
		return fmt.Errorf("firehose: download of %d bytes exceeds the %d-byte sector range", len(data), total)
	}

	if d.buf == nil {
		d.buf = make([]byte, d.maxTx)
	}

	n := d.Chunks(total)
	var off int64
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		size := int64(d.maxTx)
		if remaining := total - off; remaining < size {
			size = remaining
		}

		chunk := d.chunk(data, off, size)
		if err := d.conn.Send(ctx, chunk); err != nil {
			return fmt.Errorf("firehose: send chunk %d/%d at offset %d: %w", i+1, n, off, err)
		}
		off += size

		if report != nil {
			report(i+1, n)
		}
	}

	return nil
}

// chunk returns the bytes [off, off+size) of data padded with zeros. Chunks
// fully inside data are returned without copying.
func (d *Downloader) chunk(data []byte, off, size int64) []byte {
	end := off + size
	if end <= int64(len(data)) {
		return data[off:end]
	}

	buf := d.buf[:size]
	copied := 0
	if off < int64(len(data)) {
		copied = copy(buf, data[off:])
	}
	clear(buf[copied:])
	return buf
}
