package environment

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-jewel/common"
)

// Radiance RGBE decoding.
// Reference: https://www.graphics.cornell.edu/~bjw/rgbe.html

const (
	// maxRGBEDimension is the largest width or height a scanline header can encode.
	maxRGBEDimension = 0x7fff

	// maxRGBEPixels bounds the decoded image to 16384x8192.
	maxRGBEPixels = 1 << 27
)

var (
	errInvalidRGBEHeader     = errors.New("invalid Radiance header")
	errUnsupportedRGBEFormat = errors.New("unsupported Radiance pixel format")
	errInvalidRGBEScanline   = errors.New("invalid Radiance scanline")
)

// isRadiance reports whether data starts with a Radiance signature.
func isRadiance(data []byte) bool {
	return bytes.HasPrefix(data, []byte("#?RADIANCE")) || bytes.HasPrefix(data, []byte("#?RGBE"))
}

// decodeRGBE decodes a Radiance .hdr image into linear pixels.
func decodeRGBE(r io.Reader) (width, height int, pixels []common.Color, err error) {
	br := bufio.NewReader(r)

	first, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(first, "#?") {
		return 0, 0, nil, errInvalidRGBEHeader
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, 0, nil, fmt.Errorf("%w: %v", errInvalidRGBEHeader, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if f, ok := strings.CutPrefix(line, "FORMAT="); ok && f != "32-bit_rle_rgbe" {
			return 0, 0, nil, fmt.Errorf("%w: %s", errUnsupportedRGBEFormat, f)
		}
	}

	res, err := br.ReadString('\n')
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: missing resolution: %v", errInvalidRGBEHeader, err)
	}
	var yAxis, xAxis string
	if _, err := fmt.Sscanf(strings.TrimSpace(res), "%s %d %s %d", &yAxis, &height, &xAxis, &width); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: resolution %q", errInvalidRGBEHeader, res)
	}
	if xAxis != "+X" || (yAxis != "-Y" && yAxis != "+Y") || width <= 0 || height <= 0 {
		return 0, 0, nil, fmt.Errorf("%w: orientation %q", errUnsupportedRGBEFormat, strings.TrimSpace(res))
	}
	if width > maxRGBEDimension || height > maxRGBEDimension || width*height > maxRGBEPixels {
		return 0, 0, nil, fmt.Errorf("%w: %dx%d is too large", errInvalidRGBEHeader, width, height)
	}

	pixels = make([]common.Color, width*height)
	scan := make([]byte, width*4)
	for y := range height {
		if err := readScanline(br, scan, width); err != nil {
			return 0, 0, nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := y
		if yAxis == "+Y" {
			row = height - 1 - y
		}
		for x := range width {
			pixels[row*width+x] = rgbeToColor(scan[x*4 : x*4+4])
		}
	}
	return width, height, pixels, nil
}

func readScanline(br *bufio.Reader, scan []byte, width int) error {
	if width < 8 || width > 0x7fff {
		return readFlat(br, scan, false)
	}
	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(scan, head[:])
		return readFlat(br, scan, true)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: encoded width %d", errInvalidRGBEScanline, int(head[2])<<8|int(head[3]))
	}

	// Adaptive RLE: each of the four channels is stored separately.
	for ch := range 4 {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > width {
					return fmt.Errorf("%w: run overflows row", errInvalidRGBEScanline)
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += n
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: literal overflows row", errInvalidRGBEScanline)
			}
			for i := 0; i < n; i++ {
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				scan[(x+i)*4+ch] = v
			}
			x += n
		}
	}
	return nil
}

// readFlat reads uncompressed or old-style run-length pixels. With prefixed set, the first
// pixel has already been read into scan[:4].
func readFlat(br *bufio.Reader, scan []byte, prefixed bool) error {
	width := len(scan) / 4
	shift := 0
	for x := 0; x < width; {
		var px [4]byte
		if prefixed {
			copy(px[:], scan[:4])
			prefixed = false
		} else if _, err := io.ReadFull(br, px[:]); err != nil {
			return err
		}
		if px[0] == 1 && px[1] == 1 && px[2] == 1 && x > 0 {
			n := int(px[3]) << shift
			if x+n > width {
				return fmt.Errorf("%w: repeat overflows row", errInvalidRGBEScanline)
			}
			for i := 0; i < n; i++ {
				copy(scan[(x+i)*4:(x+i)*4+4], scan[(x-1)*4:x*4])
			}
			x += n
			shift += 8
			continue
		}
		copy(scan[x*4:x*4+4], px[:])
		x++
		shift = 0
	}
	return nil
}

func rgbeToColor(p []byte) common.Color {
	if p[3] == 0 {
		return common.Color{}
	}
	f := float32(math.Ldexp(1, int(p[3])-(128+8)))
	return common.Color{float32(p[0]) * f, float32(p[1]) * f, float32(p[2]) * f}
}
