package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	pigo "github.com/esimov/pigo/core"

	"github.com/dixieflatline76/PanCrop/config"
	"github.com/dixieflatline76/PanCrop/pkg/api"
	"github.com/dixieflatline76/PanCrop/pkg/autoframe"
	pcanvas "github.com/dixieflatline76/PanCrop/pkg/canvas"
	"github.com/dixieflatline76/PanCrop/pkg/export"
	"github.com/dixieflatline76/PanCrop/pkg/metadata"
	"github.com/dixieflatline76/PanCrop/pkg/viewport"
	"github.com/dixieflatline76/PanCrop/util/log"
)

const autoFrameTimeout = 20 * time.Second

var openExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

func (pa *App) showOpenDialog() {
	if pa.busy.Value() {
		return
	}
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			pa.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		pa.OpenFile(path)
	}, pa.win)
	d.SetFilter(storage.NewExtensionFileFilter(openExtensions))
	if src := pa.session.Source(); src != nil && src.Path != "" {
		if dir, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(src.Path))); err == nil {
			d.SetLocation(dir)
		}
	}
	d.Show()
}

// OpenFile decodes path in the background and loads it.
func (pa *App) OpenFile(path string) {
	if pa.busy.Value() {
		log.Printf("Ignoring open of %s while busy", path)
		return
	}
	pa.busy.Set(true)
	pa.setStatus("Opening %s...", filepath.Base(path))

	go func() {
		src, err := pcanvas.Open(path)
		fyne.Do(func() {
			pa.busy.Set(false)
			if err != nil {
				pa.setStatus("Could not open %s", filepath.Base(path))
				pa.showError(err)
				return
			}
			if err := pa.Load(src); err != nil {
				pa.showError(err)
			}
		})
	}()
}

// Load makes src the current image. On error the previous image stays.
func (pa *App) Load(src *pcanvas.Source) error {
	if err := pa.session.Load(src); err != nil {
		pa.setStatus("Could not load %s", src.Name())
		return err
	}

	title := config.AppName
	if src.Path != "" {
		title = fmt.Sprintf("%s - %s", filepath.Base(src.Path), config.AppName)
	}
	pa.win.SetTitle(title)
	pa.rotateCheck.SetChecked(false)
	pa.view.Redraw()
	pa.setStatus("%dx%d %s", src.Width(), src.Height(), src.Format)

	pa.gpsEntry.SetText("")
	pa.addressLabel.SetText("")
	if pa.resolver != nil {
		pa.resolver.Reset()
	}
	if lat, lon, ok := pa.session.GPS(); ok {
		pa.gpsEntry.SetText(fmt.Sprintf("%.6f, %.6f", lat, lon))
		pa.lookupAddress(lat, lon)
	}

	if pa.server != nil {
		pa.server.Broadcast(api.Event{Type: api.EventOpened, Path: src.Path})
	}
	return nil
}

// Rotate90 turns the image a quarter turn.
func (pa *App) Rotate90(dir viewport.Direction) {
	if pa.busy.Value() || !pa.session.HasImage() {
		return
	}
	if err := pa.session.Rotate90(dir); err != nil {
		pa.showError(err)
		return
	}
	pa.view.Redraw()
}

// Flip mirrors the image horizontally.
func (pa *App) Flip() {
	if pa.busy.Value() || !pa.session.HasImage() {
		return
	}
	if err := pa.session.FlipHorizontal(); err != nil {
		pa.showError(err)
		return
	}
	pa.view.Redraw()
}

// AutoFrame moves the frame to the suggested centre.
func (pa *App) AutoFrame() {
	if pa.busy.Value() || !pa.session.HasImage() {
		return
	}
	pa.busy.Set(true)
	pa.setStatus("Finding a frame...")

	working := pa.session.Working()
	aspect := pa.session.Aspect()
	framer := pa.framer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoFrameTimeout)
		defer cancel()
		s, err := framer.Suggest(ctx, working, aspect)

		fyne.Do(func() {
			pa.busy.Set(false)
			if err != nil {
				pa.setStatus("Auto-frame failed")
				pa.showError(err)
				return
			}
			if pa.session.Working() != working {
				// The image changed underneath the analysis.
				return
			}
			pa.session.CenterOn(s.Center)
			pa.view.Redraw()
			if s.Method == autoframe.MethodFaces {
				pa.setStatus("Framed on %d face(s)", s.Faces)
			} else {
				pa.setStatus("Framed on the busiest region")
			}
		})
	}()
}

// Export saves the framed crop, asking first when it would be upscaled.
func (pa *App) Export() {
	if pa.busy.Value() || !pa.session.HasImage() {
		return
	}
	q := export.ParseQuality(pa.qualitySelect.Selected)
	p, err := export.Plan(pa.session, q)
	if err != nil {
		pa.showError(err)
		return
	}
	if !p.Upscaled {
		pa.export(q)
		return
	}
	msg := fmt.Sprintf("The frame covers %dx%d pixels but %s exports at %dx%d.\nThe result will be upscaled. Export anyway?",
		p.Crop.X, p.Crop.Y, q, p.Output.X, p.Output.Y)
	dialog.ShowConfirm("Upscale", msg, func(ok bool) {
		if ok {
			pa.export(q)
		}
	}, pa.win)
}

func (pa *App) exporter() *export.Exporter {
	return &export.Exporter{
		Dir:         pa.cfg.GetStorageFolder(),
		Format:      export.ParseFormat(pa.cfg.GetExportFormat()),
		JPEGQuality: pa.cfg.GetJPEGQuality(),
		Overrides: metadata.Overrides{
			Software: config.AppName + " " + config.AppVersion,
			Editor:   pa.cfg.GetEditorName(),
		},
	}
}

// export captures the session on the UI goroutine and saves the copy in the
// background, so edits made meanwhile cannot reach the file.
func (pa *App) export(q export.Quality) {
	frame, err := pa.session.Frame()
	if err != nil {
		pa.showError(err)
		return
	}
	pa.busy.Set(true)
	pa.setStatus("Exporting...")
	e := pa.exporter()

	go func() {
		saved, err := e.Save(context.Background(), frame, q)
		fyne.Do(func() {
			pa.busy.Set(false)
			if err != nil {
				pa.setStatus("Export failed")
				pa.showError(err)
				return
			}
			pa.exported(saved)
		})
	}()
}

func (pa *App) exported(saved *export.Saved) {
	status := fmt.Sprintf("Saved %s (%dx%d)", saved.Path, saved.Size.X, saved.Size.Y)
	if saved.Skipped > 0 {
		status += fmt.Sprintf(", %d metadata tags not supported by the format", saved.Skipped)
	}
	pa.statusLabel.SetText(status)

	if pa.server != nil {
		pa.server.Broadcast(api.Event{Type: api.EventExported, Path: saved.Path, Upscaled: saved.Upscaled})
	}
}

func (pa *App) applyGPS() {
	if !pa.session.HasImage() {
		return
	}
	lat, lon, err := metadata.ParseCoordinates(pa.gpsEntry.Text)
	if err != nil {
		pa.showError(err)
		return
	}
	if err := pa.session.SetGPS(lat, lon); err != nil {
		pa.showError(err)
		return
	}
	pa.gpsEntry.SetText(fmt.Sprintf("%.6f, %.6f", lat, lon))
	pa.lookupAddress(lat, lon)
}

func (pa *App) clearGPS() {
	pa.session.ClearGPS()
	pa.gpsEntry.SetText("")
	pa.addressLabel.SetText("")
	if pa.resolver != nil {
		pa.resolver.Reset()
	}
}

// lookupAddress resolves the coordinates in the background. Only the newest
// answer reaches the label.
func (pa *App) lookupAddress(lat, lon float64) {
	if pa.resolver == nil {
		pa.addressLabel.SetText("")
		return
	}
	pa.addressLabel.SetText("Looking up address...")
	resolver := pa.resolver
	resolver.Request(context.Background(), lat, lon, func(gen uint64, addr string, ok bool) {
		fyne.Do(func() {
			// A clear or a newer lookup may have landed since the answer.
			if pa.resolver != resolver || !resolver.Current(gen) {
				return
			}
			if !ok {
				pa.addressLabel.SetText("Address unavailable")
				return
			}
			pa.addressLabel.SetText(addr)
			if pa.server != nil {
				pa.server.Broadcast(api.Event{Type: api.EventAddress, Text: addr})
			}
		})
	})
}

func (pa *App) loadFaceFinder() *pigo.Pigo {
	path := pa.cfg.GetFaceCascadePath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Face cascade %s unavailable: %v", path, err)
		return nil
	}
	faces, err := autoframe.LoadFaceFinder(path)
	if err != nil {
		log.Printf("Face detection disabled: %v", err)
		return nil
	}
	return faces
}
