package vision

import (
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockSource_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	src := NewMockSource([]*gocv.Mat{&frame1, &frame2}, false)

	if _, err := src.ReadFrame(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ReadFrame() before Open error = %v, want ErrNotOpen", err)
	}

	if err := src.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	for i := 0; i < 2; i++ {
		f, err := src.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := src.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after all frames consumed, got %v", err)
	}
}

func TestMockSource_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	src := NewMockSource([]*gocv.Mat{&frame}, true)
	src.Open()
	defer src.Close()

	for i := 0; i < 5; i++ {
		f, err := src.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockSource_EmptyLoop(t *testing.T) {
	src := NewMockSource(nil, true)
	src.Open()
	if _, err := src.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream for empty source, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		src := NewFileSource(filepath.Join(t.TempDir(), "missing.mp4"), false)
		if err := src.Open(); err == nil {
			src.Close()
			t.Fatal("expected error opening missing file")
		}
		if src.IsOpen() {
			t.Error("source should not be open")
		}
	})

	t.Run("read before open", func(t *testing.T) {
		src := NewFileSource("clip.mp4", true)
		if _, err := src.ReadFrame(); !errors.Is(err, ErrNotOpen) {
			t.Errorf("ReadFrame() error = %v, want ErrNotOpen", err)
		}
		if src.FrameCount() != 0 {
			t.Errorf("FrameCount() = %d, want 0", src.FrameCount())
		}
		if err := src.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("name", func(t *testing.T) {
		if got := NewFileSource("/videos/Beyaz.mp4", false).Name(); got != "Beyaz" {
			t.Errorf("Name() = %s, want Beyaz", got)
		}
	})
}

func TestVideoName(t *testing.T) {
	tests := map[string]string{
		"videos/Beyaz.mp4":      "Beyaz",
		"/a/b/clip.final.avi":   "clip.final",
		"noext":                 "noext",
		`C:/videos/dance.mov`:   "dance",
		"relative/dir/file.mkv": "file",
	}
	for in, want := range tests {
		if got := VideoName(in); got != want {
			t.Errorf("VideoName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH, scrW, scrH int
		wantW, wantH           int
	}{
		{"wider screen fits height", 640, 480, 1920, 1000, 1333, 1000},
		{"taller screen fits width", 800, 400, 1000, 1000, 1000, 500},
		{"same aspect", 800, 400, 1600, 800, 1600, 800},
		{"portrait video", 480, 640, 1920, 1000, 750, 1000},
		{"zero image", 0, 480, 1920, 1000, 0, 0},
		{"zero screen", 640, 480, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.imgW, tt.imgH, tt.scrW, tt.scrH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitToScreen(t *testing.T) {
	src := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer src.Close()

	dst := FitToScreen(src, 1920, 1000)
	defer dst.Close()

	if dst.Cols() != 1333 || dst.Rows() != 1000 {
		t.Errorf("FitToScreen = %dx%d, want 1333x1000", dst.Cols(), dst.Rows())
	}
}
