package ffmpeg

import (
	"slices"
	"strings"
	"testing"
)

func TestBuildArgsV4L2(t *testing.T) {
	args := BuildArgs(Params{Input: InputV4L2, Device: "/dev/video2", Width: 1920, Height: 1080, FPS: 60})
	got := strings.Join(args, " ")
	want := "ffmpeg -hide_banner -nostdin -f v4l2 -input_format mjpeg -video_size 1920x1080 -framerate 60 -i /dev/video2 " +
		"-fflags nobuffer -c:v copy -an -f mpjpeg -boundary_tag ffserver -loglevel level+error -"
	if got != want {
		t.Errorf("args =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildArgsSingleFrame(t *testing.T) {
	args := BuildArgs(Params{Input: InputV4L2, Device: "/dev/video0", Width: 1920, Height: 1080, FPS: 30, Frames: 1})
	got := strings.Join(args, " ")
	if !strings.HasSuffix(got, "-an -frames:v 1 -f mjpeg -loglevel level+error -") {
		t.Errorf("args = %s", got)
	}
	if slices.Contains(args, "mpjpeg") {
		t.Error("single frame grab should not use the multipart muxer")
	}
}

func TestBuildArgsDShowKeepsDeviceNameAsOneArg(t *testing.T) {
	args := BuildArgs(Params{
		Binary: `C:\ffmpeg\bin\ffmpeg.exe`,
		Input:  InputDShow,
		Device: "Elgato Facecam",
		Width:  1280, Height: 720, FPS: 30,
		Boundary: "frame",
	})

	if args[0] != `C:\ffmpeg\bin\ffmpeg.exe` {
		t.Errorf("binary = %q", args[0])
	}
	if !slices.Contains(args, "video=Elgato Facecam") {
		t.Errorf("missing dshow input in %v", args)
	}
	i := slices.Index(args, "-boundary_tag")
	if i < 0 || args[i+1] != "frame" {
		t.Errorf("boundary not applied: %v", args)
	}
	if !slices.Contains(args, "copy") {
		t.Error("dshow input should be codec-copied")
	}
}

func TestBuildArgsTestSourceEncodes(t *testing.T) {
	args := BuildArgs(Params{Input: InputTestSource, Width: 640, Height: 480, FPS: 15})
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-f lavfi -i testsrc2=size=640x480:rate=15") {
		t.Errorf("test source input missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:v mjpeg") || strings.Contains(joined, "-c:v copy") {
		t.Errorf("test source should be encoded to mjpeg: %s", joined)
	}
	if args[len(args)-1] != "-" {
		t.Errorf("output should be stdout, got %q", args[len(args)-1])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel string
		wantMsg   string
	}{
		{"[error] Device busy", "error", "Device busy"},
		{"[video4linux2,v4l2 @ 0x5581] [warning] The V4L2 driver changed the video", "warning",
			"[video4linux2,v4l2 @ 0x5581] The V4L2 driver changed the video"},
		{"[fatal] oops", "fatal", "oops"},
		{"plain line", "info", "plain line"},
		{"[mjpeg @ 0x1] no level here", "info", "[mjpeg @ 0x1] no level here"},
		{"[unterminated", "info", "[unterminated"},
		{"", "info", ""},
	}

	for _, tt := range tests {
		level, msg := ParseLogLevel(tt.line)
		if level != tt.wantLevel || msg != tt.wantMsg {
			t.Errorf("ParseLogLevel(%q) = (%q, %q), want (%q, %q)", tt.line, level, msg, tt.wantLevel, tt.wantMsg)
		}
	}
}

func TestFindConfiguredMissing(t *testing.T) {
	if _, err := Find("/nonexistent/ffmpeg"); err == nil {
		t.Fatal("expected error for missing configured binary")
	}
}
