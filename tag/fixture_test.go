package tag_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/require"
)

func mpegFrames() []byte {
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x64}, bytes.Repeat([]byte{0x00}, 413)...)
	return bytes.Repeat(frame, 4)
}

// writeMP3 creates an MPEG audio file, optionally prefixed with an ID3 tag holding only an album.
func writeMP3(t *testing.T, dir string, withTag bool) string {
	t.Helper()

	path := filepath.Join(dir, "song.mp3")
	var buf bytes.Buffer
	if withTag {
		tag := id3v2.NewEmptyTag()
		tag.SetAlbum("placeholder")
		_, err := tag.WriteTo(&buf)
		require.NoError(t, err)
	}
	buf.Write(mpegFrames())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func writeFLAC(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "song.flac")
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 34})
	buf.Write([]byte{0x10, 0x00, 0x10, 0x00})
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	buf.Write([]byte{0x0A, 0xC4, 0x42, 0xF0, 0x00, 0x00, 0x00, 0x00})
	buf.Write(make([]byte, 16))
	buf.Write([]byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00, 0x00})
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func writeArt(t *testing.T, dir string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, "song.jpeg")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xFF, 0xD9}

var oggCRCTable = func() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24 //nolint:gosec
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04C11DB7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

// oggPage frames one packet as a complete Ogg page.
func oggPage(headerType byte, granule uint64, seq uint32, packet []byte) []byte {
	lacing := bytes.Repeat([]byte{255}, len(packet)/255)
	lacing = append(lacing, byte(len(packet)%255))

	var page bytes.Buffer
	page.WriteString("OggS")
	page.WriteByte(0)
	page.WriteByte(headerType)
	page.Write(binary.LittleEndian.AppendUint64(nil, granule))
	page.Write(binary.LittleEndian.AppendUint32(nil, 0x7475_6e65))
	page.Write(binary.LittleEndian.AppendUint32(nil, seq))
	page.Write(make([]byte, 4))
	page.WriteByte(byte(len(lacing)))
	page.Write(lacing)
	page.Write(packet)

	b := page.Bytes()
	var crc uint32
	for _, c := range b {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^c]
	}
	binary.LittleEndian.PutUint32(b[22:26], crc)

	return b
}

// writeOpus creates an Ogg Opus stream with empty comments and one silent frame.
func writeOpus(t *testing.T, dir string) string {
	t.Helper()

	head := []byte("OpusHead")
	head = append(head, 1, 1)
	head = binary.LittleEndian.AppendUint16(head, 312)
	head = binary.LittleEndian.AppendUint32(head, 48000)
	head = append(head, 0, 0, 0)

	vendor := "tunedl"
	comments := []byte("OpusTags")
	comments = binary.LittleEndian.AppendUint32(comments, uint32(len(vendor))) //nolint:gosec
	comments = append(comments, vendor...)
	comments = binary.LittleEndian.AppendUint32(comments, 0)

	var buf bytes.Buffer
	buf.Write(oggPage(0x02, 0, 0, head))
	buf.Write(oggPage(0x00, 0, 1, comments))
	buf.Write(oggPage(0x04, 312+960, 2, []byte{0xF8, 0xFF, 0xFE}))

	path := filepath.Join(dir, "song.opus")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}
