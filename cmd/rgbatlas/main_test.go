package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"github.com/vearutop/rgbatlas"
)

func pngTile(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestWriteRawZstd(t *testing.T) {
	img := &rgbatlas.Image{Width: 16, Height: 16, Pix: bytes.Repeat([]byte{1, 2, 3, 4}, 256)}
	path := filepath.Join(t.TempDir(), "atlas.rgba.zst")

	n, err := writeRaw(path, img)
	if err != nil {
		t.Fatalf("write raw: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(data) || n >= len(img.Pix) {
		t.Fatalf("unexpected compressed size %d (file %d)", n, len(data))
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		t.Fatalf("zstd decode: %v", err)
	}
	if !bytes.Equal(raw, img.Pix) {
		t.Fatal("decompressed pixels differ")
	}
}

func TestReadInputURL(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()

	body := pngTile(t, 2, 2, color.NRGBA{R: 255, A: 255})
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/tile.png" {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			ctx.SetContentType("image/png")
			ctx.SetBody(body)
		})
	}()

	orig := httpClient
	t.Cleanup(func() { httpClient = orig })
	httpClient = &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}

	got, err := readInput("http://tiles.test/tile.png")
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatal("unexpected body")
	}

	if _, err := readInput("http://tiles.test/missing.png"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPackCommand(t *testing.T) {
	dir := t.TempDir()
	var args []string
	for i, c := range []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}, {R: 9, G: 9, B: 9, A: 9}} {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		if err := os.WriteFile(p, pngTile(t, 2, 2, c), 0o600); err != nil {
			t.Fatalf("write tile: %v", err)
		}
		args = append(args, p)
	}
	out := filepath.Join(dir, "atlas.rgba")
	meta := filepath.Join(dir, "atlas.json")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs(append([]string{"pack", "-c", "2", "-o", out, "--meta", meta}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !strings.Contains(stdout.String(), "4x4 atlas") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read atlas: %v", err)
	}
	if len(raw) != 4*4*4 {
		t.Fatalf("unexpected atlas length %d", len(raw))
	}
	// Bottom-right texel belongs to the fourth tile.
	if !bytes.Equal(raw[len(raw)-4:], []byte{9, 9, 9, 9}) {
		t.Fatalf("unexpected bottom-right texel %v", raw[len(raw)-4:])
	}

	var m rawMeta
	b, err := os.ReadFile(meta)
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal meta: %v", err)
	}
	if m.Width != 4 || m.Height != 4 || m.Format != "rgba8" || m.Zstd {
		t.Fatalf("unexpected meta %+v", m)
	}
}
