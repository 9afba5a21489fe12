package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zalando/go-keyring"
)

// MockPreferences implements fyne.Preferences for testing
type MockPreferences struct {
	data map[string]interface{}
}

func NewMockPreferences() *MockPreferences {
	return &MockPreferences{
		data: make(map[string]interface{}),
	}
}

func (m *MockPreferences) Bool(key string) bool {
	val, ok := m.data[key]
	if !ok {
		return false
	}
	return val.(bool)
}

func (m *MockPreferences) BoolWithFallback(key string, fallback bool) bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(bool)
}

func (m *MockPreferences) SetBool(key string, value bool) {
	m.data[key] = value
}

func (m *MockPreferences) Float(key string) float64 {
	val, ok := m.data[key]
	if !ok {
		return 0.0
	}
	return val.(float64)
}

func (m *MockPreferences) FloatWithFallback(key string, fallback float64) float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(float64)
}

func (m *MockPreferences) SetFloat(key string, value float64) {
	m.data[key] = value
}

func (m *MockPreferences) Int(key string) int {
	val, ok := m.data[key]
	if !ok {
		return 0
	}
	return val.(int)
}

func (m *MockPreferences) IntWithFallback(key string, fallback int) int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(int)
}

func (m *MockPreferences) SetInt(key string, value int) {
	m.data[key] = value
}

func (m *MockPreferences) String(key string) string {
	val, ok := m.data[key]
	if !ok {
		return ""
	}
	return val.(string)
}

func (m *MockPreferences) StringWithFallback(key string, fallback string) string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(string)
}

func (m *MockPreferences) SetString(key string, value string) {
	m.data[key] = value
}

func (m *MockPreferences) StringList(key string) []string {
	val, ok := m.data[key]
	if !ok {
		return []string{}
	}
	return val.([]string)
}

func (m *MockPreferences) StringListWithFallback(key string, fallback []string) []string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]string)
}

func (m *MockPreferences) SetStringList(key string, value []string) {
	m.data[key] = value
}

func (m *MockPreferences) BoolList(key string) []bool {
	val, ok := m.data[key]
	if !ok {
		return []bool{}
	}
	return val.([]bool)
}

func (m *MockPreferences) BoolListWithFallback(key string, fallback []bool) []bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]bool)
}

func (m *MockPreferences) SetBoolList(key string, value []bool) {
	m.data[key] = value
}

func (m *MockPreferences) FloatList(key string) []float64 {
	val, ok := m.data[key]
	if !ok {
		return []float64{}
	}
	return val.([]float64)
}

func (m *MockPreferences) FloatListWithFallback(key string, fallback []float64) []float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]float64)
}

func (m *MockPreferences) SetFloatList(key string, value []float64) {
	m.data[key] = value
}

func (m *MockPreferences) IntList(key string) []int {
	val, ok := m.data[key]
	if !ok {
		return []int{}
	}
	return val.([]int)
}

func (m *MockPreferences) IntListWithFallback(key string, fallback []int) []int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]int)
}

func (m *MockPreferences) SetIntList(key string, value []int) {
	m.data[key] = value
}

func (m *MockPreferences) RemoveValue(key string) {
	delete(m.data, key)
}

func (m *MockPreferences) AddChangeListener(func()) {
	// No-op for now
}

func (m *MockPreferences) ChangeListeners() []func() {
	return []func(){}
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := NewAppConfig(NewMockPreferences())

	assert.Equal(t, DefaultStorageFolder(), cfg.GetStorageFolder())
	assert.Equal(t, "16:9", cfg.GetAspect())
	assert.Equal(t, "High", cfg.GetQuality())
	assert.Equal(t, "Fit", cfg.GetFitMode())
	assert.Equal(t, DefaultJPEGQuality, cfg.GetJPEGQuality())
	assert.Equal(t, "JPG", cfg.GetExportFormat())
	assert.True(t, cfg.GetGeocoderEnabled())
	assert.True(t, cfg.GetUpdateCheckEnabled())
	assert.Empty(t, cfg.GetFaceCascadePath())

	w, h := cfg.GetWindowSize()
	assert.Equal(t, DefaultWindowWidth, w)
	assert.Equal(t, DefaultWindowHeight, h)
}

func TestAppConfigRoundTrip(t *testing.T) {
	prefs := NewMockPreferences()
	cfg := NewAppConfig(prefs)

	t.Run("Export", func(t *testing.T) {
		cfg.SetStorageFolder("/tmp/out")
		cfg.SetAspect("Square")
		cfg.SetQuality("Original")
		cfg.SetFitMode("Fill")
		cfg.SetExportFormat("PNG")
		assert.Equal(t, "PNG", cfg.GetExportFormat())
		assert.Equal(t, "/tmp/out", cfg.GetStorageFolder())
		assert.Equal(t, "Square", cfg.GetAspect())
		assert.Equal(t, "Original", cfg.GetQuality())
		assert.Equal(t, "Fill", cfg.GetFitMode())
	})

	t.Run("WindowSize", func(t *testing.T) {
		cfg.SetWindowSize(1024, 700)
		w, h := cfg.GetWindowSize()
		assert.Equal(t, 1024, w)
		assert.Equal(t, 700, h)

		cfg.SetWindowSize(0, 700)
		w, h = cfg.GetWindowSize()
		assert.Equal(t, DefaultWindowWidth, w)
		assert.Equal(t, DefaultWindowHeight, h)
	})

	t.Run("JPEGQuality", func(t *testing.T) {
		cfg.SetJPEGQuality(80)
		assert.Equal(t, 80, cfg.GetJPEGQuality())
		cfg.SetJPEGQuality(300)
		assert.Equal(t, DefaultJPEGQuality, cfg.GetJPEGQuality())
	})

	t.Run("Editor", func(t *testing.T) {
		cfg.SetEditorName("Jane")
		assert.Equal(t, "Jane", cfg.GetEditorName())
	})

	t.Run("Geocoder", func(t *testing.T) {
		cfg.SetGeocoderEnabled(false)
		assert.False(t, cfg.GetGeocoderEnabled())
		cfg.SetGeocoderEndpoint("http://localhost:8080")
		assert.Equal(t, "http://localhost:8080", cfg.GetGeocoderEndpoint())
	})

	t.Run("FaceCascade", func(t *testing.T) {
		cfg.SetFaceCascadePath("/opt/models/facefinder")
		assert.Equal(t, "/opt/models/facefinder", cfg.GetFaceCascadePath())
	})
}

func TestGeocoderAPIKeyKeyring(t *testing.T) {
	keyring.MockInit()
	cfg := NewAppConfig(NewMockPreferences())

	assert.Empty(t, cfg.GetGeocoderAPIKey())

	assert.NoError(t, cfg.SetGeocoderAPIKey("secret"))
	assert.Equal(t, "secret", cfg.GetGeocoderAPIKey())

	assert.NoError(t, cfg.SetGeocoderAPIKey(""))
	assert.Empty(t, cfg.GetGeocoderAPIKey())

	// Removing twice is not an error.
	assert.NoError(t, cfg.SetGeocoderAPIKey(""))
}

func TestLogFile(t *testing.T) {
	assert.Equal(t, filepath.Join("logs", "pancrop.log"), LogFile("logs"))
}
