package ffmpeg

import (
	"fmt"
	"strconv"
)

// BuildArgs returns the argv for an ffmpeg process that reads the camera's
// native MJPEG stream, copies it without re-encoding into an mpjpeg
// multipart stream on stdout, and logs only errors.
//
// The test source input has no native MJPEG, so it is encoded instead.
func BuildArgs(p Params) []string {
	bin := p.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	boundary := p.Boundary
	if boundary == "" {
		boundary = DefaultBoundary
	}
	size := fmt.Sprintf("%dx%d", p.Width, p.Height)
	fps := strconv.Itoa(p.FPS)

	args := []string{bin, "-hide_banner", "-nostdin"}

	switch p.Input {
	case InputDShow:
		args = append(args,
			"-f", "dshow",
			"-vcodec", "mjpeg",
			"-video_size", size,
			"-framerate", fps,
			"-i", "video="+p.Device,
		)
	case InputTestSource:
		args = append(args,
			"-re",
			"-f", "lavfi",
			"-i", fmt.Sprintf("testsrc2=size=%s:rate=%s", size, fps),
		)
	default:
		args = append(args,
			"-f", "v4l2",
			"-input_format", "mjpeg",
			"-video_size", size,
			"-framerate", fps,
			"-i", p.Device,
		)
	}

	args = append(args, "-fflags", "nobuffer")
	if p.Input == InputTestSource {
		args = append(args, "-c:v", "mjpeg", "-q:v", "5")
	} else {
		args = append(args, "-c:v", "copy")
	}

	args = append(args, "-an")
	if p.Frames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(p.Frames), "-f", "mjpeg")
	} else {
		args = append(args, "-f", "mpjpeg", "-boundary_tag", boundary)
	}
	return append(args, "-loglevel", "level+error", "-")
}
