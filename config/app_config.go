package config

import (
	"errors"
	"log"
	"os/user"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/zalando/go-keyring"
)

// Preference keys. Values are flat so the settings record stays a simple
// key/value map.
const (
	StorageFolderKey      = "storage_folder"
	AspectKey             = "aspect"
	QualityKey            = "quality"
	FitModeKey            = "fit_mode"
	WindowWidthKey        = "window_width"
	WindowHeightKey       = "window_height"
	EditorNameKey         = "editor_name"
	JPEGQualityKey        = "jpeg_quality"
	ExportFormatKey       = "export_format"
	GeocoderEndpointKey   = "geocoder_endpoint"
	GeocoderEnabledKey    = "geocoder_enabled"
	FaceCascadePathKey    = "face_cascade_path"
	AppUpdateCheckKey     = "app_update_check_enabled"
	geocoderKeyringSuffix = "-geocoder"
)

// Defaults for the settings record.
const (
	DefaultAspect           = "16:9"
	DefaultQuality          = "High"
	DefaultFitMode          = "Fit"
	DefaultWindowWidth      = 1280
	DefaultWindowHeight     = 800
	DefaultJPEGQuality      = 95
	DefaultExportFormat     = "JPG"
	DefaultGeocoderEndpoint = "https://nominatim.openstreetmap.org"
)

// AppConfig holds the application-wide settings backed by fyne preferences.
type AppConfig struct {
	prefs  fyne.Preferences
	userid string
	mu     sync.RWMutex
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	c := &AppConfig{prefs: p}
	if u, err := user.Current(); err == nil {
		c.userid = u.Username
	}
	return c
}

// GetStorageFolder returns the folder exports are written into.
func (c *AppConfig) GetStorageFolder() string {
	return c.prefs.StringWithFallback(StorageFolderKey, DefaultStorageFolder())
}

// SetStorageFolder sets the export folder.
func (c *AppConfig) SetStorageFolder(dir string) {
	c.prefs.SetString(StorageFolderKey, dir)
}

// GetAspect returns the last selected aspect ratio label.
func (c *AppConfig) GetAspect() string {
	return c.prefs.StringWithFallback(AspectKey, DefaultAspect)
}

// SetAspect stores the aspect ratio label.
func (c *AppConfig) SetAspect(label string) {
	c.prefs.SetString(AspectKey, label)
}

// GetQuality returns the last selected quality tier label.
func (c *AppConfig) GetQuality() string {
	return c.prefs.StringWithFallback(QualityKey, DefaultQuality)
}

// SetQuality stores the quality tier label.
func (c *AppConfig) SetQuality(label string) {
	c.prefs.SetString(QualityKey, label)
}

// GetFitMode returns "Fit" or "Fill".
func (c *AppConfig) GetFitMode() string {
	return c.prefs.StringWithFallback(FitModeKey, DefaultFitMode)
}

// SetFitMode stores the fit mode label.
func (c *AppConfig) SetFitMode(mode string) {
	c.prefs.SetString(FitModeKey, mode)
}

// GetWindowSize returns the last window size, falling back to the default
// when nothing sensible was stored.
func (c *AppConfig) GetWindowSize() (int, int) {
	w := c.prefs.IntWithFallback(WindowWidthKey, DefaultWindowWidth)
	h := c.prefs.IntWithFallback(WindowHeightKey, DefaultWindowHeight)
	if w <= 0 || h <= 0 {
		return DefaultWindowWidth, DefaultWindowHeight
	}
	return w, h
}

// SetWindowSize stores the window size.
func (c *AppConfig) SetWindowSize(w, h int) {
	c.prefs.SetInt(WindowWidthKey, w)
	c.prefs.SetInt(WindowHeightKey, h)
}

// GetEditorName returns the name stamped into exported files. Defaults to
// the OS user.
func (c *AppConfig) GetEditorName() string {
	return c.prefs.StringWithFallback(EditorNameKey, c.userid)
}

// SetEditorName sets the editor identity.
func (c *AppConfig) SetEditorName(name string) {
	c.prefs.SetString(EditorNameKey, name)
}

// GetJPEGQuality returns the JPEG encoder quality, clamped to 1..100.
func (c *AppConfig) GetJPEGQuality() int {
	q := c.prefs.IntWithFallback(JPEGQualityKey, DefaultJPEGQuality)
	if q < 1 || q > 100 {
		return DefaultJPEGQuality
	}
	return q
}

// SetJPEGQuality sets the JPEG encoder quality.
func (c *AppConfig) SetJPEGQuality(q int) {
	c.prefs.SetInt(JPEGQualityKey, q)
}

// GetExportFormat returns the export file format label.
func (c *AppConfig) GetExportFormat() string {
	return c.prefs.StringWithFallback(ExportFormatKey, DefaultExportFormat)
}

// SetExportFormat sets the export file format label.
func (c *AppConfig) SetExportFormat(label string) {
	c.prefs.SetString(ExportFormatKey, label)
}

// GetGeocoderEnabled reports whether address lookups may go to the network.
func (c *AppConfig) GetGeocoderEnabled() bool {
	return c.prefs.BoolWithFallback(GeocoderEnabledKey, true)
}

// SetGeocoderEnabled toggles address lookups.
func (c *AppConfig) SetGeocoderEnabled(enabled bool) {
	c.prefs.SetBool(GeocoderEnabledKey, enabled)
}

// GetGeocoderEndpoint returns the reverse geocoding base URL.
func (c *AppConfig) GetGeocoderEndpoint() string {
	return c.prefs.StringWithFallback(GeocoderEndpointKey, DefaultGeocoderEndpoint)
}

// SetGeocoderEndpoint sets the reverse geocoding base URL.
func (c *AppConfig) SetGeocoderEndpoint(endpoint string) {
	c.prefs.SetString(GeocoderEndpointKey, endpoint)
}

// GetFaceCascadePath returns the pigo cascade file used for face-aware
// framing. Empty disables face detection.
func (c *AppConfig) GetFaceCascadePath() string {
	return c.prefs.String(FaceCascadePathKey)
}

// SetFaceCascadePath sets the pigo cascade file path.
func (c *AppConfig) SetFaceCascadePath(path string) {
	c.prefs.SetString(FaceCascadePathKey, path)
}

// GetUpdateCheckEnabled returns whether the application should check for updates
func (c *AppConfig) GetUpdateCheckEnabled() bool {
	return c.prefs.BoolWithFallback(AppUpdateCheckKey, true)
}

// SetUpdateCheckEnabled sets whether the application should check for updates
func (c *AppConfig) SetUpdateCheckEnabled(enabled bool) {
	c.prefs.SetBool(AppUpdateCheckKey, enabled)
}

// GetGeocoderAPIKey returns the optional geocoder API key from the keyring.
func (c *AppConfig) GetGeocoderAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, err := keyring.Get(AppName+geocoderKeyringSuffix, c.userid)
	if err != nil {
		// Log only if it's not a "not found" error to avoid noise on first run
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Printf("failed to retrieve geocoder API key from keyring: %v", err)
		}
		return ""
	}
	return key
}

// SetGeocoderAPIKey stores the geocoder API key in the keyring. An empty key
// removes it.
func (c *AppConfig) SetGeocoderAPIKey(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	service := AppName + geocoderKeyringSuffix
	if key == "" {
		err := keyring.Delete(service, c.userid)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		return nil
	}
	return keyring.Set(service, c.userid, key)
}
