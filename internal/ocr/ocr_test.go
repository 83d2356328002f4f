package ocr

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.gotName = name
	f.gotArgs = args
	return f.stdout, f.stderr, f.err
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()
	assert.Equal(t, "tesseract", cfg.Tesseract)
	assert.Equal(t, "pdftotext", cfg.Pdftotext)
	assert.Equal(t, "eng", cfg.Language)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
}

func TestImageToText(t *testing.T) {
	fr := &fakeRunner{stdout: []byte("  Recognized Text \n")}
	e := NewWithRunner(Config{Language: "deu"}, fr)

	got, err := e.ImageToText(context.Background(), []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Equal(t, "Recognized Text", got)

	assert.Equal(t, "tesseract", fr.gotName)
	require.Len(t, fr.gotArgs, 4)
	assert.Equal(t, "stdout", fr.gotArgs[1])
	assert.Equal(t, "-l", fr.gotArgs[2])
	assert.Equal(t, "deu", fr.gotArgs[3])

	// the spooled temp file is cleaned up afterwards
	_, statErr := os.Stat(fr.gotArgs[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestImageToTextEmptyImage(t *testing.T) {
	e := NewWithRunner(Config{}, &fakeRunner{})
	_, err := e.ImageToText(context.Background(), nil)
	require.Error(t, err)
}

func TestImageToTextRunnerError(t *testing.T) {
	fr := &fakeRunner{err: errors.New("exit status 1"), stderr: []byte("no image data")}
	e := NewWithRunner(Config{}, fr)

	_, err := e.ImageToText(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
	assert.Contains(t, err.Error(), "no image data")
}

func TestPageText(t *testing.T) {
	fr := &fakeRunner{stdout: []byte("page body\n")}
	e := NewWithRunner(Config{}, fr)

	got, err := e.PageText(context.Background(), "/tmp/doc.pdf", 3)
	require.NoError(t, err)
	assert.Equal(t, "page body\n", got)

	assert.Equal(t, "pdftotext", fr.gotName)
	assert.Equal(t, []string{
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", "3", "-l", "3", "/tmp/doc.pdf", "-",
	}, fr.gotArgs)
}

func TestPageTextRunnerError(t *testing.T) {
	fr := &fakeRunner{err: errors.New("exit status 2")}
	e := NewWithRunner(Config{}, fr)

	_, err := e.PageText(context.Background(), "/tmp/doc.pdf", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))
}
