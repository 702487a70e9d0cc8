package rgbatlas

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// OpenEXR magic number, "v/1\x01" on disk.
const exrMagic = 20000630

const (
	exrFlagTiled     = 0x00000200
	exrFlagDeep      = 0x00000800
	exrFlagMultipart = 0x00001000
)

const (
	exrCompressionNone = 0
	exrCompressionZips = 2
	exrCompressionZip  = 3
)

const (
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

// Channel roles, non-negative roles are the sample index in an NRGBA64 texel.
const (
	exrChanOther = -2
	exrChanY     = -1
	exrChanR     = 0
	exrChanG     = 1
	exrChanB     = 2
	exrChanA     = 3
)

func init() {
	image.RegisterFormat("exr", "v/1\x01", decodeEXRImage, DecodeEXRConfig)
}

type exrChannel struct {
	name      string
	pixelType int32
	xSampling int32
	ySampling int32
	role      int
}

type exrHeader struct {
	channels    []exrChannel
	dataWindow  [4]int32
	compression byte
	width       int
	height      int
}

type exrReader interface {
	io.Reader
	io.ByteReader
}

// DecodeEXR decodes a single-part scanline OpenEXR image.
// Samples are clamped to [0, 1] without tone mapping, missing alpha is opaque.
func DecodeEXR(data []byte) (*image.NRGBA64, error) {
	r := bytes.NewReader(data)
	hdr, err := readEXRHeader(r)
	if err != nil {
		return nil, err
	}

	blockLines := 1
	if hdr.compression == exrCompressionZip {
		blockLines = 16
	}
	blockCount := (hdr.height + blockLines - 1) / blockLines
	if hdr.compression == exrCompressionNone && exrExpectedBlockBytes(hdr.width, hdr.height, hdr.channels) > r.Len() {
		return nil, errors.New("OpenEXR pixel data truncated")
	}
	if blockCount > r.Len()/8 {
		return nil, errors.New("OpenEXR offset table truncated")
	}
	offsets := make([]uint64, blockCount)
	for i := range offsets {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}

	dst := image.NewNRGBA64(image.Rect(0, 0, hdr.width, hdr.height))
	for i := 6; i < len(dst.Pix); i += 8 {
		dst.Pix[i], dst.Pix[i+1] = 0xFF, 0xFF
	}

	baseY := int(hdr.dataWindow[1])
	for block := 0; block < blockCount; block++ {
		if offsets[block] == 0 {
			continue
		}
		if offsets[block] >= uint64(len(data)) {
			return nil, errors.New("OpenEXR block offset out of range")
		}
		if _, err := r.Seek(int64(offsets[block]), io.SeekStart); err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		dataSize, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if dataSize < 0 || int(dataSize) > r.Len() {
			return nil, errors.New("invalid OpenEXR block size")
		}
		raw := make([]byte, dataSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}

		startY := int(y) - baseY
		if startY < 0 || startY >= hdr.height {
			return nil, errors.New("OpenEXR scanline out of bounds")
		}
		lines := blockLines
		if startY+lines > hdr.height {
			lines = hdr.height - startY
		}

		expected := exrExpectedBlockBytes(hdr.width, lines, hdr.channels)
		unpacked, err := exrDecompress(hdr.compression, raw, expected)
		if err != nil {
			return nil, err
		}

		if err := exrDecodeBlock(dst, hdr.channels, startY, hdr.width, lines, unpacked); err != nil {
			return nil, err
		}
	}

	return dst, nil
}

// DecodeEXRConfig reads OpenEXR dimensions from the header.
func DecodeEXRConfig(r io.Reader) (image.Config, error) {
	br, ok := r.(exrReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	hdr, err := readEXRHeader(br)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBA64Model, Width: hdr.width, Height: hdr.height}, nil
}

func decodeEXRImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeEXR(data)
}

func readEXRHeader(r exrReader) (*exrHeader, error) {
	magic, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if magic != exrMagic {
		return nil, errors.New("not an OpenEXR file")
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version&exrFlagTiled != 0 {
		return nil, errors.New("tiled OpenEXR not supported")
	}
	if version&exrFlagDeep != 0 {
		return nil, errors.New("deep OpenEXR not supported")
	}
	if version&exrFlagMultipart != 0 {
		return nil, errors.New("multipart OpenEXR not supported")
	}

	hdr := &exrHeader{compression: exrCompressionNone}
	var hasDataWindow bool

	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		size, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, errors.New("invalid OpenEXR attribute size")
		}
		payload, err := io.ReadAll(io.LimitReader(r, int64(size)))
		if err != nil {
			return nil, err
		}
		if len(payload) != int(size) {
			return nil, io.ErrUnexpectedEOF
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return nil, errors.New("unexpected OpenEXR channels attribute type")
			}
			if hdr.channels, err = parseEXRChannels(payload); err != nil {
				return nil, err
			}
		case "dataWindow":
			if typ != "box2i" || len(payload) != 16 {
				return nil, errors.New("invalid OpenEXR dataWindow")
			}
			for i := range hdr.dataWindow {
				hdr.dataWindow[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
			}
			hasDataWindow = true
		case "compression":
			if typ != "compression" || len(payload) < 1 {
				return nil, errors.New("invalid OpenEXR compression attribute")
			}
			hdr.compression = payload[0]
		case "tiles":
			return nil, errors.New("tiled OpenEXR not supported")
		}
	}

	if len(hdr.channels) == 0 {
		return nil, errors.New("OpenEXR missing channels")
	}
	if !hasDataWindow {
		return nil, errors.New("OpenEXR missing dataWindow")
	}
	if !hasColorChannel(hdr.channels) {
		return nil, errors.New("OpenEXR missing R/G/B or Y channels")
	}
	for _, ch := range hdr.channels {
		if ch.xSampling != 1 || ch.ySampling != 1 {
			return nil, errors.New("OpenEXR subsampled channels are not supported")
		}
	}
	switch hdr.compression {
	case exrCompressionNone, exrCompressionZips, exrCompressionZip:
	default:
		return nil, fmt.Errorf("unsupported OpenEXR compression %d", hdr.compression)
	}

	hdr.width = int(hdr.dataWindow[2]) - int(hdr.dataWindow[0]) + 1
	hdr.height = int(hdr.dataWindow[3]) - int(hdr.dataWindow[1]) + 1
	if hdr.width <= 0 || hdr.height <= 0 {
		return nil, fmt.Errorf("invalid OpenEXR dimensions %dx%d", hdr.width, hdr.height)
	}
	if _, ok := byteLen(hdr.width, hdr.height); !ok {
		return nil, fmt.Errorf("%w: OpenEXR %dx%d", ErrSizeOverflow, hdr.width, hdr.height)
	}

	return hdr, nil
}

func parseEXRChannels(data []byte) ([]exrChannel, error) {
	r := bytes.NewReader(data)
	var channels []exrChannel
	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		pixelType, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if pixelType != exrPixelHalf && pixelType != exrPixelFloat && pixelType != exrPixelUint {
			return nil, fmt.Errorf("unsupported OpenEXR pixel type %d", pixelType)
		}
		// pLinear and three reserved bytes.
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return nil, err
		}
		xSampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		ySampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		role := exrChanOther
		switch strings.ToUpper(name) {
		case "R":
			role = exrChanR
		case "G":
			role = exrChanG
		case "B":
			role = exrChanB
		case "A":
			role = exrChanA
		case "Y":
			role = exrChanY
		}
		channels = append(channels, exrChannel{
			name:      name,
			pixelType: pixelType,
			xSampling: xSampling,
			ySampling: ySampling,
			role:      role,
		})
	}
	return channels, nil
}

func exrSampleBytes(pixelType int32) int {
	if pixelType == exrPixelHalf {
		return 2
	}
	return 4
}

func exrExpectedBlockBytes(width, lines int, channels []exrChannel) int {
	total := 0
	for _, ch := range channels {
		total += width * lines * exrSampleBytes(ch.pixelType)
	}
	return total
}

func exrDecompress(compression byte, data []byte, expected int) ([]byte, error) {
	switch compression {
	case exrCompressionNone:
		if len(data) != expected {
			return nil, errors.New("unexpected OpenEXR block size")
		}
		return data, nil
	case exrCompressionZips, exrCompressionZip:
		// Blocks that do not shrink are stored raw.
		if len(data) == expected {
			return data, nil
		}
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		uncompressed, err := io.ReadAll(io.LimitReader(zr, int64(expected)+1))
		if err != nil {
			return nil, err
		}
		if len(uncompressed) != expected {
			return nil, errors.New("unexpected OpenEXR decompressed size")
		}
		undoPredictor(uncompressed)
		return unshuffleBytes(uncompressed), nil
	default:
		return nil, errors.New("unsupported OpenEXR compression")
	}
}

func undoPredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = byte(int(data[i]) + int(data[i-1]) - 128)
	}
}

// unshuffleBytes interleaves the two halves written by the ZIP predictor.
func unshuffleBytes(data []byte) []byte {
	half := (len(data) + 1) / 2
	out := make([]byte, len(data))
	for i := range out {
		if i%2 == 0 {
			out[i] = data[i/2]
		} else {
			out[i] = data[half+i/2]
		}
	}
	return out
}

func exrDecodeBlock(dst *image.NRGBA64, channels []exrChannel, startY, width, lines int, data []byte) error {
	offset := 0
	for row := 0; row < lines; row++ {
		y := startY + row
		for _, ch := range channels {
			lineBytes := width * exrSampleBytes(ch.pixelType)
			if offset+lineBytes > len(data) {
				return errors.New("OpenEXR block truncated")
			}
			line := data[offset : offset+lineBytes]
			offset += lineBytes

			if ch.role != exrChanOther {
				exrApplyLine(dst, ch.role, y, width, ch.pixelType, line)
			}
		}
	}
	return nil
}

func exrApplyLine(dst *image.NRGBA64, role int, y, width int, pixelType int32, line []byte) {
	row := dst.Pix[y*dst.Stride:]
	for x := 0; x < width; x++ {
		var v float32
		switch pixelType {
		case exrPixelHalf:
			v = halfToFloat32(binary.LittleEndian.Uint16(line[x*2:]))
		case exrPixelFloat:
			v = math.Float32frombits(binary.LittleEndian.Uint32(line[x*4:]))
		case exrPixelUint:
			v = float32(binary.LittleEndian.Uint32(line[x*4:]))
		}
		s := unitToUint16(v)
		texel := row[x*8 : x*8+8]
		if role == exrChanY {
			binary.BigEndian.PutUint16(texel[0:], s)
			binary.BigEndian.PutUint16(texel[2:], s)
			binary.BigEndian.PutUint16(texel[4:], s)
			continue
		}
		binary.BigEndian.PutUint16(texel[role*2:], s)
	}
}

// unitToUint16 clamps v to [0, 1] and scales it to 16 bits, NaN maps to 0.
func unitToUint16(v float32) uint16 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xFFFF
	}
	return uint16(v*0xFFFF + 0.5)
}

func hasColorChannel(channels []exrChannel) bool {
	for _, ch := range channels {
		if ch.role >= exrChanY && ch.role <= exrChanB {
			return true
		}
	}
	return false
}

func readNullString(r io.ByteReader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		if len(buf) == 255 {
			return "", errors.New("OpenEXR name too long")
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := int32(h>>10) & 0x1F
	mant := int32(h & 0x03FF)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		for mant&0x0400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x03FF
	} else if exp == 31 {
		if mant == 0 {
			return math.Float32frombits((sign << 31) | 0x7F800000)
		}
		return math.Float32frombits((sign << 31) | 0x7F800000 | (uint32(mant) << 13))
	}

	exp += 127 - 15
	mant <<= 13
	return math.Float32frombits((sign << 31) | (uint32(exp) << 23) | uint32(mant))
}
