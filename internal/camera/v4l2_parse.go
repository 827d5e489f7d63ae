package camera

import (
	"bufio"
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	devNodeRe   = regexp.MustCompile(`/dev/video\d+`)
	ctrlValueRe = regexp.MustCompile(`^\s*(\w+)\s+0x[0-9a-fA-F]+\s+\((\w+)\)\s*:.*?\bvalue=(-?\d+)`)
	codecRe     = regexp.MustCompile(`\[\d+\]:\s+'(\w+)'`)
	sizeRe      = regexp.MustCompile(`Size:\s+Discrete\s+(\d+)x(\d+)`)
	fpsRe       = regexp.MustCompile(`\((\d+(?:\.\d+)?)\s+fps\)`)
)

// parseListDevices finds the first /dev/videoN listed under a device whose
// header line contains match. v4l2-ctl --list-devices prints one
// unindented header per device followed by indented node paths.
func parseListDevices(out, match string) (string, bool) {
	match = strings.ToLower(match)
	inBlock := false

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			inBlock = false
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			inBlock = strings.Contains(strings.ToLower(line), match)
			continue
		}
		if inBlock {
			if node := devNodeRe.FindString(line); node != "" {
				return node, true
			}
		}
	}
	return "", false
}

// parseControlValues reads name/value pairs from v4l2-ctl -L output.
// Menu item lines under a menu control are skipped.
func parseControlValues(out string) map[string]int {
	values := make(map[string]int)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		m := ctrlValueRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[3]); err == nil {
			values[m[1]] = v
		}
	}
	return values
}

// parseFormats reads v4l2-ctl --list-formats-ext output into distinct
// formats, sorted by pixel count then fps, both descending.
func parseFormats(out string) []VideoFormat {
	var (
		formats []VideoFormat
		codec   string
		width   int
		height  int
	)
	seen := make(map[VideoFormat]bool)

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if m := codecRe.FindStringSubmatch(line); m != nil {
			codec, width, height = m[1], 0, 0
			continue
		}
		if m := sizeRe.FindStringSubmatch(line); m != nil {
			width, _ = strconv.Atoi(m[1])
			height, _ = strconv.Atoi(m[2])
			continue
		}
		if m := fpsRe.FindStringSubmatch(line); m != nil && codec != "" && width > 0 {
			fps, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			f := VideoFormat{Codec: codec, Width: width, Height: height, FPS: int(math.Round(fps))}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}

	SortFormats(formats)
	return formats
}

// SortFormats orders by resolution descending, then fps descending, then
// codec name for a stable result.
func SortFormats(formats []VideoFormat) {
	slices.SortStableFunc(formats, func(a, b VideoFormat) int {
		if c := cmp.Compare(b.Width*b.Height, a.Width*a.Height); c != 0 {
			return c
		}
		if c := cmp.Compare(b.FPS, a.FPS); c != 0 {
			return c
		}
		return cmp.Compare(a.Codec, b.Codec)
	})
}
