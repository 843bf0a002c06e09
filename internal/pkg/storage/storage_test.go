package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "vehicles/a.jpg", strings.NewReader("hello")))

	rc, err := s.Open(ctx, "vehicles/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "vehicles/a.jpg"))
	require.NoError(t, s.Delete(ctx, "vehicles/a.jpg"))

	_, err = s.Open(ctx, "vehicles/a.jpg")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Open(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitJPEG(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.FitJPEG(bytes.NewReader(pngOf(t, 400, 200)), 100, 100)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(out)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	out, err = p.FitJPEG(bytes.NewReader(pngOf(t, 40, 20)), 100, 100)
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(out)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)

	_, err = p.FitJPEG(strings.NewReader("not an image"), 100, 100)
	assert.Error(t, err)
}
