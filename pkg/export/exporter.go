package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dixieflatline76/PanCrop/pkg/metadata"
	"github.com/dixieflatline76/PanCrop/pkg/viewport"
	"github.com/dixieflatline76/PanCrop/util/log"
)

// Exporter writes crops into a folder.
type Exporter struct {
	Dir         string
	Format      Format
	JPEGQuality int
	Overrides   metadata.Overrides
}

// Saved describes a written export.
type Saved struct {
	Path     string
	Size     image.Point
	Upscaled bool
	// Skipped counts tags the output format could not hold.
	Skipped int
}

// Save exports the crop of a captured frame at quality q. Take the frame
// with Session.Frame on the goroutine that owns the session; Save may then
// run anywhere.
func (e *Exporter) Save(ctx context.Context, f viewport.Frame, q Quality) (*Saved, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	res, err := ExportFrame(f, q)
	if err != nil {
		return nil, fmt.Errorf("cropping: %w", err)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export folder: %w", err)
	}

	path := filepath.Join(e.Dir, OutputName(f.Name, f.Aspect, e.Format, uuid.NewString()))

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", tmp, err)
	}
	skipped, err := Encode(file, res.Image, f.Tags, EncodeOptions{
		Format:      e.Format,
		JPEGQuality: e.JPEGQuality,
		Overrides:   e.Overrides,
	})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("saving %s: %w", path, err)
	}

	if skipped > 0 {
		log.Debugf("%d tags not written to %s", skipped, path)
	}
	log.Printf("Exported %s (%dx%d, upscaled=%v)", path, res.Image.Bounds().Dx(), res.Image.Bounds().Dy(), res.Upscaled)

	return &Saved{
		Path:     path,
		Size:     res.Image.Bounds().Size(),
		Upscaled: res.Upscaled,
		Skipped:  skipped,
	}, nil
}

// OutputName builds "<base>_<aspect>_<id>.<ext>". An empty base becomes
// "image" and the id is shortened to eight characters.
func OutputName(base string, a viewport.Aspect, f Format, id string) string {
	if base == "" {
		base = "image"
	}
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	label := strings.ToLower(strings.ReplaceAll(a.String(), ":", "x"))
	return fmt.Sprintf("%s_%s_%s.%s", base, label, id, f.Ext())
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
