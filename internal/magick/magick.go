// Package magick runs the ImageMagick command line tool as a subprocess.
package magick

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Result is the captured outcome of one invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Magick invokes the magick binary. Path is either the binary itself or the
// directory that contains it.
type Magick struct {
	Path string
}

func New(path string) *Magick {
	return &Magick{Path: path}
}

// Binary resolves the executable to run.
func (m *Magick) Binary() string {
	name := "magick"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if m.Path == "" {
		return name
	}
	if info, err := os.Stat(m.Path); err == nil && info.IsDir() {
		return filepath.Join(m.Path, name)
	}
	return m.Path
}

// Run executes the tool with args. A non-zero exit status is reported in
// Result.ExitCode, not as an error; err is set only when the process could
// not be run at all.
func (m *Magick) Run(ctx context.Context, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.Binary(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, fmt.Errorf("run %s: %w", m.Binary(), err)
	}
}

// Identify reports the width and height of the image at path.
func (m *Magick) Identify(ctx context.Context, path string) (int, int, error) {
	res, err := m.Run(ctx, "identify", "-format", "%w %h\n", path)
	if err != nil {
		return 0, 0, err
	}
	if res.ExitCode != 0 {
		return 0, 0, fmt.Errorf("identify %s: exit status %d: %s", path, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return ParseDimension(res.Stdout)
}

// ParseDimension reads "<width> <height>" from the first line of out.
// Animated images print one line per frame.
func ParseDimension(out []byte) (int, int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return 0, 0, fmt.Errorf("unexpected identify output %q", scanner.Text())
		}
		width, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, 0, fmt.Errorf("parse width: %w", err)
		}
		height, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, fmt.Errorf("parse height: %w", err)
		}
		if width <= 0 || height <= 0 {
			return 0, 0, fmt.Errorf("invalid dimension %dx%d", width, height)
		}
		return width, height, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, errors.New("empty identify output")
}
