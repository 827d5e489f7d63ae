// Package process runs a single subprocess whose stdout is consumed as a
// byte stream by the caller and whose stderr is forwarded to the logger.
//
// Stop interrupts the process group, waits for a grace period, then kills
// it. Errors from signalling a process that has already exited are
// swallowed, so Stop is safe to call on every exit path.
//
//	p := process.New("preview", []string{"ffmpeg", "-i", dev, "-f", "mpjpeg", "-"}, logger,
//		process.WithLogParser(ffmpegLogger, ffmpeg.ParseLogLevel))
//	if err := p.Start(); err != nil {
//		return err
//	}
//	defer p.Stop()
//	io.Copy(w, p.Stdout())
package process
