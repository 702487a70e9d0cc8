package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
	"github.com/vearutop/rgbatlas"
)

const fetchTimeout = 30 * time.Second

var httpClient = &fasthttp.Client{
	ReadTimeout:         fetchTimeout,
	WriteTimeout:        fetchTimeout,
	MaxIdleConnDuration: time.Minute,
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// readInput loads encoded bytes from a local path or an http(s) URL.
func readInput(src string) ([]byte, error) {
	if !isURL(src) {
		return os.ReadFile(filepath.Clean(src))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(src)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := httpClient.DoRedirects(req, resp, 5); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", src, code)
	}
	return append([]byte(nil), resp.Body()...), nil
}

func readInputs(srcs []string) ([][]byte, error) {
	inputs := make([][]byte, len(srcs))
	for i, src := range srcs {
		data, err := readInput(src)
		if err != nil {
			return nil, fmt.Errorf("reading input %d: %w", i, err)
		}
		inputs[i] = data
	}
	return inputs, nil
}

// writeRaw stores img pixels as-is, zstd-compressed when the path ends with .zst.
func writeRaw(path string, img *rgbatlas.Image) (int, error) {
	if !strings.HasSuffix(path, ".zst") {
		return len(img.Pix), os.WriteFile(filepath.Clean(path), img.Pix, 0o644)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	defer enc.Close()

	compressed := enc.EncodeAll(img.Pix, make([]byte, 0, len(img.Pix)/4))
	return len(compressed), os.WriteFile(filepath.Clean(path), compressed, 0o644)
}

type rawMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Zstd   bool   `json:"zstd,omitempty"`
}

func writeMeta(path, rawPath string, img *rgbatlas.Image) error {
	if path == "" {
		return nil
	}
	b, err := json.MarshalIndent(rawMeta{
		Width:  img.Width,
		Height: img.Height,
		Format: "rgba8",
		Zstd:   strings.HasSuffix(rawPath, ".zst"),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), b, 0o644)
}
