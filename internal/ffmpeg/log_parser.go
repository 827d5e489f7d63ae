package ffmpeg

import "strings"

// ParseLogLevel splits a line written with -loglevel level+... into its
// level and message. Lines look like "[error] msg" or
// "[mjpeg @ 0x55d0] [warning] msg"; for the latter the component prefix is
// kept in the message. Lines without a recognised level are "info".
func ParseLogLevel(line string) (level, msg string) {
	if lvl, rest, ok := cutLevel(line); ok {
		return lvl, rest
	}

	if !strings.HasPrefix(line, "[") {
		return "info", line
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return "info", line
	}
	component, rest := line[:end+2], line[end+2:]
	if lvl, tail, ok := cutLevel(rest); ok {
		return lvl, component + tail
	}
	return "info", line
}

func cutLevel(s string) (level, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	end := strings.Index(s, "] ")
	if end < 0 {
		return "", s, false
	}
	switch lvl := s[1:end]; lvl {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return lvl, s[end+2:], true
	}
	return "", s, false
}
