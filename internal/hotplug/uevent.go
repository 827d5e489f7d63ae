// Package hotplug watches kernel uevents for video devices coming and going
// so the cached camera handle can be dropped.
package hotplug

import (
	"bytes"
	"strings"
)

// Kernel actions the watcher reacts to.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// SubsystemVideo4Linux is the uevent subsystem of /dev/videoN nodes.
const SubsystemVideo4Linux = "video4linux"

// Event is one kernel uevent.
type Event struct {
	Action    string            // "add", "remove", "change", ...
	KObj      string            // /devices/pci0000:00/...
	Subsystem string            // "video4linux", "usb", ...
	DevName   string            // "video0"
	Env       map[string]string // every KEY=VALUE pair
}

// DevNode is the /dev path of the event's device, empty when the event
// carries no DEVNAME.
func (e Event) DevNode() string {
	if e.DevName == "" {
		return ""
	}
	if strings.HasPrefix(e.DevName, "/") {
		return e.DevName
	}
	return "/dev/" + e.DevName
}

// ParseUEvent parses "ACTION@KOBJ\0KEY=VALUE\0...". Messages re-broadcast
// by udevd start with a binary "libudev" header that is skipped. It returns
// nil for anything that is not a uevent.
func ParseUEvent(data []byte) *Event {
	if bytes.HasPrefix(data, []byte("libudev")) {
		data = skipUdevHeader(data)
	}

	header, rest, _ := bytes.Cut(data, []byte{0})
	action, kobj, ok := strings.Cut(string(header), "@")
	if !ok || action == "" {
		return nil
	}

	ev := &Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for part := range bytes.SplitSeq(rest, []byte{0}) {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}
	return ev
}

// skipUdevHeader finds the first NUL-terminated field that looks like
// "action@path" and returns the data from there.
func skipUdevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		if at := bytes.IndexByte(rest, '@'); at > 0 && at < 20 {
			return rest
		}
	}
	return nil
}
