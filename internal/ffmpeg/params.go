package ffmpeg

// InputFormat is the ffmpeg demuxer used to open the camera.
type InputFormat string

// Supported capture backends.
const (
	InputV4L2       InputFormat = "v4l2"
	InputDShow      InputFormat = "dshow"
	InputTestSource InputFormat = "lavfi"
)

// DefaultBoundary is the multipart boundary ffmpeg's mpjpeg muxer writes
// between frames, and the one the HTTP layer advertises.
const DefaultBoundary = "ffserver"

// Params describes one MJPEG relay command.
type Params struct {
	Binary   string      // ffmpeg executable; "ffmpeg" when empty
	Input    InputFormat // capture backend
	Device   string      // /dev/videoN on Linux, friendly name on Windows
	Width    int
	Height   int
	FPS      int
	Boundary string // DefaultBoundary when empty
	// Frames, when positive, makes ffmpeg exit after that many frames and
	// write them as bare concatenated JPEGs instead of a multipart stream.
	Frames int
}
