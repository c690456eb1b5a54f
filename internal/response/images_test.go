package response

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chimera/internal/imagesize"
)

func newTestSizer(t *testing.T, table string) *imagesize.Cache {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "imagesize.toml")
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return imagesize.Load(logger, path)
}

func TestInjectImageSizesFillsMissingDimensions(t *testing.T) {
	sizer := newTestSizer(t, `
[images]
  [images."diagram.png"]
  width = 400
  height = 300
`)

	got := injectImageSizes(`<img src="diagram.png" alt="a diagram">`, sizer)

	for _, want := range []string{`width="400"`, `height="300"`} {
		if !strings.Contains(got, want) {
			t.Errorf("injectImageSizes() = %q, want it to contain %q", got, want)
		}
	}
}

func TestInjectImageSizesLeavesCompleteTagUntouched(t *testing.T) {
	sizer := newTestSizer(t, `
[images]
  [images."diagram.png"]
  width = 400
  height = 300
`)

	input := `<img src="diagram.png" width="1" height="1">`
	got := injectImageSizes(input, sizer)

	if !strings.Contains(got, `width="1"`) || !strings.Contains(got, `height="1"`) {
		t.Errorf("injectImageSizes() = %q, want existing attributes preserved", got)
	}
}

func TestInjectImageSizesUnknownImageLeftAlone(t *testing.T) {
	sizer := newTestSizer(t, "[images]\n")

	input := `<img src="unknown.png" alt="nope">`
	got := injectImageSizes(input, sizer)

	if got != input {
		t.Errorf("injectImageSizes() = %q, want input unchanged for an unknown image", got)
	}
}

func TestInjectImageSizesNilSizerIsNoop(t *testing.T) {
	input := `<img src="diagram.png">`

	if got := injectImageSizes(input, nil); got != input {
		t.Errorf("injectImageSizes() = %q, want input unchanged when sizer is nil", got)
	}
}
