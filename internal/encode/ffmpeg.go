package encode

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg streams Y4M frames into an ffmpeg child process, which picks the
// container and codec from the output extension.
type FFmpeg struct {
	cmd    *exec.Cmd
	y4m    *Y4M
	stderr bytes.Buffer
}

// NewFFmpeg starts ffmpeg writing to path.
func NewFFmpeg(path string, opts Options) (*FFmpeg, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrNoFFmpeg
	}
	// fail on an unwritable path before spawning anything
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	f.Close()

	args := []string{"-y", "-loglevel", "error", "-f", "yuv4mpegpipe", "-i", "-", "-pix_fmt", "yuv420p"}
	if opts.BitRate > 0 {
		args = append(args, "-b:v", strconv.FormatUint(uint64(opts.BitRate), 10))
	}
	args = append(args, path)

	e := &FFmpeg{cmd: exec.Command(bin, args...)}
	e.cmd.Stderr = &e.stderr
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	e.y4m, err = NewY4M(stdin, opts)
	if err != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
		return nil, err
	}
	return e, nil
}

func (e *FFmpeg) Encode(img *image.RGBA) error {
	if err := e.y4m.Encode(img); err != nil {
		return fmt.Errorf("ffmpeg: %w%s", err, e.detail())
	}
	return nil
}

func (e *FFmpeg) Close() error {
	if e.y4m.closed {
		return nil
	}
	werr := e.y4m.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w%s", err, e.detail())
	}
	return werr
}

func (e *FFmpeg) detail() string {
	msg := strings.TrimSpace(e.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}
