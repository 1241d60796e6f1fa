package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestSaveProductImage(t *testing.T) {
	m := NewMedia(t.TempDir())
	url, err := m.SaveProductImage(fileHeader(t, "my cake.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, "_my_cake.png"))

	disk, ok := m.Resolve(strings.TrimPrefix(url, "/uploads/"))
	require.True(t, ok)
	_, err = os.Stat(disk)
	require.NoError(t, err)

	require.NoError(t, m.Remove(url))
	_, err = os.Stat(disk)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveProductImage_Rejects(t *testing.T) {
	m := NewMedia(t.TempDir())

	_, err := m.SaveProductImage(fileHeader(t, "cake.gif", pngHeader))
	assert.ErrorIs(t, err, ErrImageType)

	_, err = m.SaveProductImage(fileHeader(t, "cake.png", []byte("#!/bin/sh\necho hi\n")))
	assert.ErrorIs(t, err, ErrImageType)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxImageSize)...)
	_, err = m.SaveProductImage(fileHeader(t, "cake.png", big))
	assert.ErrorIs(t, err, ErrImageSize)

	entries, _ := os.ReadDir(filepath.Join(m.Dir, "products"))
	assert.Empty(t, entries)
}

func TestResolve_BlocksTraversal(t *testing.T) {
	m := NewMedia("/srv/uploads")
	for _, p := range []string{"../etc/passwd", "products/../../x", "%2e%2e/x", "a\x00b", "", "/abs"} {
		_, ok := m.Resolve(p)
		assert.False(t, ok, p)
	}
	got, ok := m.Resolve("products/a.png")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/srv/uploads", "products", "a.png"), got)
}
