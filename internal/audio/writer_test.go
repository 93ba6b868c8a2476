package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteWAVCanonicalBytes(t *testing.T) {
	tests := []struct {
		name    string
		rate    uint32
		samples []int16
		data    []byte
	}{
		{name: "Samples", rate: 8000, samples: []int16{1, -32768, -1, 256}, data: []byte{0x01, 0x00, 0x00, 0x80, 0xFF, 0xFF, 0x00, 0x01}},
		{name: "Empty", rate: 16000, samples: nil, data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.wav")
			store := &SampleStore{Samples: tt.samples, SampleRate: tt.rate}

			if err := WriteWAV(path, store); err != nil {
				t.Fatalf("WriteWAV failed: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read back %s: %v", path, err)
			}
			want := canonicalWAV(tt.rate, tt.data)
			if !bytes.Equal(got, want) {
				t.Errorf("encoded bytes differ:\n got %x\nwant %x", got, want)
			}

			entries, _ := os.ReadDir(filepath.Dir(path))
			if len(entries) != 1 {
				t.Errorf("Expected only the output file, found %d entries", len(entries))
			}
		})
	}
}

func TestIntBuffer(t *testing.T) {
	store := &SampleStore{Samples: []int16{3, -4}, SampleRate: 22050}
	buf := store.IntBuffer()

	if buf.Format.NumChannels != 1 || buf.Format.SampleRate != 22050 {
		t.Errorf("unexpected format %+v", *buf.Format)
	}
	if buf.SourceBitDepth != 16 {
		t.Errorf("Expected bit depth 16, got %d", buf.SourceBitDepth)
	}
	if len(buf.Data) != 2 || buf.Data[0] != 3 || buf.Data[1] != -4 {
		t.Errorf("unexpected data %v", buf.Data)
	}
}
