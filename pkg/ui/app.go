// Package ui is the PanCrop desktop front end.
package ui

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/PanCrop/asset"
	"github.com/dixieflatline76/PanCrop/config"
	"github.com/dixieflatline76/PanCrop/pkg/api"
	"github.com/dixieflatline76/PanCrop/pkg/autoframe"
	"github.com/dixieflatline76/PanCrop/pkg/export"
	"github.com/dixieflatline76/PanCrop/pkg/geocode"
	"github.com/dixieflatline76/PanCrop/pkg/ui/setting"
	"github.com/dixieflatline76/PanCrop/pkg/viewport"
	"github.com/dixieflatline76/PanCrop/util"
	"github.com/dixieflatline76/PanCrop/util/log"
)

// App is the main window and everything it drives.
type App struct {
	app      fyne.App
	win      fyne.Window
	cfg      *config.AppConfig
	assetMgr *asset.Manager
	server   *api.Server

	session  *viewport.Session
	view     *ImageView
	resolver *geocode.Resolver
	framer   *autoframe.Framer

	fine *util.SafeFlag
	busy *util.SafeFlag

	aspectSelect  *widget.Select
	qualitySelect *widget.Select
	fitSelect     *widget.Select
	rotateCheck   *widget.Check
	gpsEntry      *widget.Entry
	addressLabel  *widget.Label
	statusLabel   *widget.Label
}

// NewApp builds the main window. server may be nil when the hand-off
// listener could not start.
func NewApp(a fyne.App, cfg *config.AppConfig, server *api.Server) *App {
	pa := &App{
		app:      a,
		cfg:      cfg,
		assetMgr: asset.NewManager(),
		server:   server,
		fine:     util.NewSafeBool(),
		busy:     util.NewSafeBool(),
	}
	pa.session = viewport.NewSession(viewport.Options{
		Aspect:  viewport.ParseAspect(cfg.GetAspect()),
		FitMode: viewport.ParseFitMode(cfg.GetFitMode()),
	})
	pa.configureServices()

	backdrop, err := pa.assetMgr.GetImage(asset.Backdrop)
	if err != nil {
		backdrop = image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	pa.view = NewImageView(pa.session, backdrop, pa.fine, pa.busy)
	pa.view.SetQuality(export.ParseQuality(cfg.GetQuality()))
	pa.view.OnError = pa.showError

	pa.win = a.NewWindow(config.AppName)
	if icon, err := pa.assetMgr.GetIcon(asset.AppIcon); err == nil {
		a.SetIcon(icon)
		pa.win.SetIcon(icon)
	}
	pa.win.SetContent(pa.buildContent())
	pa.win.SetMainMenu(pa.buildMainMenu())
	pa.bindKeys()
	pa.win.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) > 0 {
			pa.OpenFile(uris[0].Path())
		}
	})
	w, h := cfg.GetWindowSize()
	pa.win.Resize(fyne.NewSize(float32(w), float32(h)))
	pa.win.SetOnClosed(func() {
		size := pa.win.Canvas().Size()
		cfg.SetWindowSize(int(size.Width), int(size.Height))
	})

	if server != nil {
		server.SetOpenHandler(func(path string) error {
			fyne.Do(func() {
				pa.win.RequestFocus()
				pa.OpenFile(path)
			})
			return nil
		})
	}
	return pa
}

// configureServices (re)creates the parts built from settings.
func (pa *App) configureServices() {
	if pa.cfg.GetGeocoderEnabled() {
		client := geocode.NewClient(
			geocode.WithEndpoint(pa.cfg.GetGeocoderEndpoint()),
			geocode.WithAPIKey(pa.cfg.GetGeocoderAPIKey()),
		)
		pa.resolver = geocode.NewResolver(client)
	} else {
		pa.resolver = nil
	}

	faces := pa.loadFaceFinder()
	pa.framer = autoframe.New(faces, autoframe.DefaultTuning())

	if pa.server != nil {
		pa.server.SetExportDir(pa.cfg.GetStorageFolder())
	}
}

func (pa *App) buildContent() fyne.CanvasObject {
	aspects := setting.StringOptions(viewport.Aspects())
	pa.aspectSelect = widget.NewSelect(aspects, func(s string) {
		pa.session.SetAspect(viewport.ParseAspect(s))
		pa.cfg.SetAspect(s)
		pa.view.Redraw()
	})
	pa.aspectSelect.SetSelected(pa.session.Aspect().String())

	qualities := setting.StringOptions(export.Qualities())
	pa.qualitySelect = widget.NewSelect(qualities, func(s string) {
		pa.cfg.SetQuality(s)
		pa.view.SetQuality(export.ParseQuality(s))
	})
	pa.qualitySelect.SetSelected(export.ParseQuality(pa.cfg.GetQuality()).String())

	fits := []string{viewport.Fit.String(), viewport.Fill.String()}
	pa.fitSelect = widget.NewSelect(fits, func(s string) {
		pa.session.SetFitMode(viewport.ParseFitMode(s))
		pa.cfg.SetFitMode(s)
		pa.view.Redraw()
	})
	pa.fitSelect.SetSelected(pa.session.FitMode().String())

	pa.rotateCheck = widget.NewCheck("Rotate mode", func(on bool) {
		pa.view.SetRotateMode(on)
	})

	pa.gpsEntry = widget.NewEntry()
	pa.gpsEntry.SetPlaceHolder("lat, lon")
	pa.gpsEntry.OnSubmitted = func(string) { pa.applyGPS() }
	pa.addressLabel = widget.NewLabel("")
	pa.addressLabel.Wrapping = fyne.TextWrapWord
	pa.addressLabel.Importance = widget.LowImportance

	pa.statusLabel = widget.NewLabel("Open an image to start.")
	pa.statusLabel.Truncation = fyne.TextTruncateEllipsis

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), pa.showOpenDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), pa.Export),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { pa.Rotate90(viewport.CounterClockwise) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { pa.Rotate90(viewport.Clockwise) }),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), pa.Flip),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), pa.AutoFrame),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), pa.ShowPreferences),
		widget.NewToolbarAction(theme.HelpIcon(), pa.showShortcuts),
	)

	side := container.NewVBox(
		widget.NewLabelWithStyle("Frame", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Aspect", pa.aspectSelect),
			widget.NewFormItem("Quality", pa.qualitySelect),
			widget.NewFormItem("Zoom", pa.fitSelect),
		),
		pa.rotateCheck,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Location", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		pa.gpsEntry,
		container.NewGridWithColumns(2,
			widget.NewButton("Set", pa.applyGPS),
			widget.NewButton("Clear", pa.clearGPS),
		),
		pa.addressLabel,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), pa.Export),
	)
	sidePanel := container.NewPadded(container.NewGridWrap(fyne.NewSize(240, side.MinSize().Height), side))

	return container.NewBorder(toolbar, pa.statusLabel, nil, sidePanel, pa.view)
}

func (pa *App) buildMainMenu() *fyne.MainMenu {
	return fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Open...", pa.showOpenDialog),
			fyne.NewMenuItem("Export", pa.Export),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Preferences", pa.ShowPreferences),
		),
		fyne.NewMenu("Image",
			fyne.NewMenuItem("Rotate Left", func() { pa.Rotate90(viewport.CounterClockwise) }),
			fyne.NewMenuItem("Rotate Right", func() { pa.Rotate90(viewport.Clockwise) }),
			fyne.NewMenuItem("Flip Horizontal", pa.Flip),
			fyne.NewMenuItem("Straighten", func() { pa.rotateCheck.SetChecked(!pa.rotateCheck.Checked) }),
			fyne.NewMenuItem("Auto-frame", pa.AutoFrame),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("Shortcuts", pa.showShortcuts),
			fyne.NewMenuItem("Check for Updates", func() { go pa.checkForUpdates(true) }),
			fyne.NewMenuItem("About "+config.AppName, pa.showAbout),
		),
	)
}

func (pa *App) bindKeys() {
	c := pa.win.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		pa.showOpenDialog()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		pa.Export()
	})
	c.SetOnTypedRune(func(r rune) {
		if c.Focused() != nil {
			return
		}
		pa.handleRune(r)
	})
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(e *fyne.KeyEvent) {
			if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
				pa.fine.Set(true)
			}
		})
		dc.SetOnKeyUp(func(e *fyne.KeyEvent) {
			if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
				pa.fine.Set(false)
			}
		})
	}
}

func (pa *App) handleRune(r rune) {
	switch r {
	case '[':
		pa.Rotate90(viewport.CounterClockwise)
	case ']':
		pa.Rotate90(viewport.Clockwise)
	case 'h', 'H':
		pa.Flip()
	case 'a', 'A':
		pa.AutoFrame()
	case 'r', 'R':
		pa.rotateCheck.SetChecked(!pa.rotateCheck.Checked)
	case 'f', 'F':
		if pa.session.FitMode() == viewport.Fit {
			pa.fitSelect.SetSelected(viewport.Fill.String())
		} else {
			pa.fitSelect.SetSelected(viewport.Fit.String())
		}
	}
}

// Window returns the main window.
func (pa *App) Window() fyne.Window {
	return pa.win
}

// Session returns the editing session.
func (pa *App) Session() *viewport.Session {
	return pa.session
}

// ShowAndRun shows the window and runs the event loop.
func (pa *App) ShowAndRun() {
	if pa.cfg.GetUpdateCheckEnabled() {
		go pa.checkForUpdates(false)
	}
	pa.win.ShowAndRun()
}

func (pa *App) setStatus(format string, args ...any) {
	pa.statusLabel.SetText(fmt.Sprintf(format, args...))
}

func (pa *App) showError(err error) {
	log.Printf("Error: %v", err)
	dialog.ShowError(err, pa.win)
}

func (pa *App) showShortcuts() {
	text, err := pa.assetMgr.GetText(asset.ShortcutsText)
	if err != nil {
		pa.showError(err)
		return
	}
	body := widget.NewLabel(text)
	body.TextStyle = fyne.TextStyle{Monospace: true}
	dialog.ShowCustom("Shortcuts", "Close", body, pa.win)
}

func (pa *App) showAbout() {
	text, err := pa.assetMgr.GetText(asset.AboutText)
	if err != nil {
		pa.showError(err)
		return
	}
	body := widget.NewLabel(fmt.Sprintf("%s %s\n\n%s", config.AppName, config.AppVersion, text))
	body.Wrapping = fyne.TextWrapWord
	d := dialog.NewCustom("About "+config.AppName, "Close", body, pa.win)
	d.Resize(fyne.NewSize(480, 300))
	d.Show()
}

// checkForUpdates asks GitHub for a newer release. With announceNone set the
// user also hears when nothing newer exists.
func (pa *App) checkForUpdates(announceNone bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := util.CheckForUpdates(ctx, nil)
	if err != nil {
		log.Printf("Update check failed: %v", err)
		if announceNone {
			fyne.Do(func() { pa.showError(err) })
		}
		return
	}
	if !res.UpdateAvailable {
		if announceNone {
			fyne.Do(func() {
				dialog.ShowInformation("Up to date", fmt.Sprintf("%s %s is the latest version.", config.AppName, res.CurrentVersion), pa.win)
			})
		}
		return
	}

	fyne.Do(func() {
		msg := fmt.Sprintf("%s %s is available (you have %s). Open the release page?", config.AppName, res.LatestVersion, res.CurrentVersion)
		dialog.ShowConfirm("Update available", msg, func(ok bool) {
			if !ok {
				return
			}
			if u, err := url.Parse(res.ReleaseURL); err == nil {
				if err := pa.app.OpenURL(u); err != nil {
					log.Printf("Failed to open release page: %v", err)
				}
			}
		}, pa.win)
	})
}
