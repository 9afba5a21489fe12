package ui

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/PanCrop/config"
	"github.com/dixieflatline76/PanCrop/pkg/export"
	"github.com/dixieflatline76/PanCrop/pkg/ui/setting"
	"github.com/dixieflatline76/PanCrop/util/log"
)

var jpegQualities = []string{"75", "85", "90", "95", "100"}

// ShowPreferences opens the preferences window.
func (pa *App) ShowPreferences() {
	prefsWindow := pa.app.NewWindow(fmt.Sprintf("%s Preferences", config.AppName))
	prefsWindow.Resize(fyne.NewSize(720, 640))
	prefsWindow.CenterOnScreen()

	sm := NewSettingsManager(prefsWindow)
	panel := pa.CreatePrefsPanel(sm)

	closeButton := widget.NewButton("Close", prefsWindow.Close)
	footer := container.NewHBox(layout.NewSpacer(), sm.GetApplySettingsButton(), closeButton)

	prefsWindow.SetContent(container.NewBorder(nil, footer, nil, nil, container.NewVScroll(panel)))
	prefsWindow.Show()
}

// CreatePrefsPanel builds the preferences panel on sm. Changes land in the
// settings when sm applies them.
func (pa *App) CreatePrefsPanel(sm setting.SettingsManager) *fyne.Container {
	header := container.NewVBox()

	// Export
	header.Add(sm.CreateSectionTitleLabel("Export"))

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:              "storageFolder",
		InitialValue:      pa.cfg.GetStorageFolder(),
		PlaceHolder:       config.DefaultStorageFolder(),
		Label:             sm.CreateSettingTitleLabel("Export folder:"),
		HelpContent:       sm.CreateSettingDescriptionLabel("Crops are written here. The folder is created on first export."),
		PostValidateCheck: checkFolder,
		ApplyFunc:         pa.cfg.SetStorageFolder,
	}, header)

	formats := setting.StringOptions(export.Formats())
	sm.CreateSelectSetting(&setting.SelectConfig{
		Name:         "exportFormat",
		Options:      formats,
		InitialValue: setting.IndexOf(formats, export.ParseFormat(pa.cfg.GetExportFormat()).String()),
		Label:        sm.CreateSettingTitleLabel("File format:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Only JPEG files carry metadata such as the location and editor name."),
		ApplyFunc: func(i int) {
			pa.cfg.SetExportFormat(formats[i])
		},
	}, header)

	sm.CreateSelectSetting(&setting.SelectConfig{
		Name:         "jpegQuality",
		Options:      jpegQualities,
		InitialValue: setting.IndexOf(jpegQualities, strconv.Itoa(pa.cfg.GetJPEGQuality())),
		Label:        sm.CreateSettingTitleLabel("JPEG quality:"),
		ApplyFunc: func(i int) {
			q, _ := strconv.Atoi(jpegQualities[i])
			pa.cfg.SetJPEGQuality(q)
		},
	}, header)

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "editorName",
		InitialValue: pa.cfg.GetEditorName(),
		PlaceHolder:  "Your name",
		Label:        sm.CreateSettingTitleLabel("Editor name:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Stamped into exported JPEG files as the artist."),
		ApplyFunc:    pa.cfg.SetEditorName,
	}, header)

	// Location
	header.Add(widget.NewSeparator())
	header.Add(sm.CreateSectionTitleLabel("Location"))

	sm.CreateBoolSetting(&setting.BoolConfig{
		Name:         "geocoderEnabled",
		InitialValue: pa.cfg.GetGeocoderEnabled(),
		Label:        sm.CreateSettingTitleLabel("Look up addresses:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Sends the photo's coordinates to the geocoding service to show a street address."),
		ApplyFunc:    pa.cfg.SetGeocoderEnabled,
	}, header)

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:              "geocoderEndpoint",
		InitialValue:      pa.cfg.GetGeocoderEndpoint(),
		PlaceHolder:       config.DefaultGeocoderEndpoint,
		Label:             sm.CreateSettingTitleLabel("Geocoding service:"),
		PostValidateCheck: checkEndpoint,
		ApplyFunc:         pa.cfg.SetGeocoderEndpoint,
	}, header)

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "geocoderKey",
		InitialValue: pa.cfg.GetGeocoderAPIKey(),
		Password:     true,
		PlaceHolder:  "Optional",
		Label:        sm.CreateSettingTitleLabel("Service API key:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Kept in the system keyring."),
		ApplyFunc: func(key string) {
			if err := pa.cfg.SetGeocoderAPIKey(key); err != nil {
				log.Printf("Failed to store geocoder key: %v", err)
			}
		},
	}, header)

	// Auto-frame
	header.Add(widget.NewSeparator())
	header.Add(sm.CreateSectionTitleLabel("Auto-frame"))

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "faceCascade",
		InitialValue: pa.cfg.GetFaceCascadePath(),
		PlaceHolder:  "Path to a pigo facefinder cascade",
		Label:        sm.CreateSettingTitleLabel("Face cascade:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("With a cascade, auto-frame centres on faces. Leave empty to frame on detail only."),
		PostValidateCheck: func(s string) error {
			if s == "" {
				return nil
			}
			return checkFile(s)
		},
		ApplyFunc: pa.cfg.SetFaceCascadePath,
	}, header)

	// Updates
	header.Add(widget.NewSeparator())
	header.Add(sm.CreateSectionTitleLabel("Updates"))
	sm.CreateBoolSetting(&setting.BoolConfig{
		Name:         "updateCheck",
		InitialValue: pa.cfg.GetUpdateCheckEnabled(),
		Label:        sm.CreateSettingTitleLabel("Check on start:"),
		ApplyFunc:    pa.cfg.SetUpdateCheckEnabled,
	}, header)
	sm.CreateButtonWithConfirmationSetting(&setting.ButtonWithConfirmationConfig{
		Name:       "checkNow",
		Label:      sm.CreateSettingTitleLabel("Check now:"),
		ButtonText: "Check for Updates",
		OnPressed:  func() { go pa.checkForUpdates(true) },
	}, header)

	sm.RegisterRefreshFunc(pa.configureServices)
	return header
}

func checkFolder(s string) error {
	if s == "" {
		return errors.New("folder is required")
	}
	if !filepath.IsAbs(s) {
		return errors.New("use an absolute path")
	}
	if info, err := os.Stat(s); err == nil && !info.IsDir() {
		return errors.New("path is a file")
	}
	return nil
}

func checkEndpoint(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

func checkFile(s string) error {
	info, err := os.Stat(s)
	if err != nil {
		return errors.New("file not found")
	}
	if info.IsDir() {
		return errors.New("path is a folder")
	}
	return nil
}
