package lzw

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestBlockWriterFraming(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantLen []int
	}{
		{"empty", 0, nil},
		{"short", 10, []int{10}},
		{"exact block", 255, []int{255}},
		{"two blocks", 300, []int{255, 45}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bw := NewBlockWriter(&buf)
			payload := bytes.Repeat([]byte{0xab}, tt.n)
			if _, err := bw.Write(payload); err != nil {
				t.Fatal(err)
			}
			if err := bw.Close(); err != nil {
				t.Fatal(err)
			}

			out := buf.Bytes()
			var got []int
			for len(out) > 0 && out[0] != 0 {
				n := int(out[0])
				got = append(got, n)
				out = out[1+n:]
			}
			if len(out) != 1 || out[0] != 0 {
				t.Fatalf("stream must end with a single terminator, rest = %v", out)
			}
			if len(got) != len(tt.wantLen) {
				t.Fatalf("blocks = %v, want %v", got, tt.wantLen)
			}
			for i := range got {
				if got[i] != tt.wantLen[i] {
					t.Errorf("block %d length = %d, want %d", i, got[i], tt.wantLen[i])
				}
			}
		})
	}
}

func TestBlockReaderRoundTrip(t *testing.T) {
	payload := testInput(1000, 8, 3)
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf)
	_, _ = bw.Write(payload)
	_ = bw.Close()
	buf.WriteByte(0x3b) // whatever follows the terminator stays unread

	src := bufio.NewReader(&buf)
	br := NewBlockReader(src)
	got, err := io.ReadAll(br)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch")
	}
	if next, _ := src.ReadByte(); next != 0x3b {
		t.Errorf("byte after terminator = %#x, want 0x3b", next)
	}
}

func TestBlockReaderDrain(t *testing.T) {
	stream := []byte{3, 1, 2, 3, 2, 4, 5, 0, 0x2c}
	src := bufio.NewReader(bytes.NewReader(stream))
	br := NewBlockReader(src)
	if b, err := br.ReadByte(); err != nil || b != 1 {
		t.Fatalf("ReadByte() = %d, %v", b, err)
	}
	skipped, err := br.Drain()
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if skipped != 4 {
		t.Errorf("Drain() skipped %d, want 4", skipped)
	}
	if next, _ := src.ReadByte(); next != 0x2c {
		t.Errorf("next byte = %#x, want 0x2c", next)
	}
}

func TestBlockReaderTruncated(t *testing.T) {
	tests := []struct {
		name    string
		stream  []byte
		wantErr error
	}{
		{"missing terminator", []byte{2, 1, 2}, io.ErrUnexpectedEOF},
		{"short block", []byte{5, 1, 2}, ErrShortBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := NewBlockReader(bufio.NewReader(bytes.NewReader(tt.stream)))
			_, err := io.ReadAll(br)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadAll() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
