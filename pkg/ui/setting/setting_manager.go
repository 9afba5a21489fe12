// Package setting declares the widgets the preferences window is built
// from, so panels can be assembled and tested against a fake manager.
package setting

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SettingsHelper creates the labels shared by all panels.
type SettingsHelper interface {
	CreateSectionTitleLabel(desc string) *widget.Label
	CreateSettingTitleLabel(desc string) *widget.Label
	CreateSettingDescriptionLabel(desc string) fyne.CanvasObject
}

// SelectConfig holds the configuration for a select setting. Values are
// indexes into Options.
type SelectConfig struct {
	Name         string
	Options      []string
	InitialValue int
	Label        fyne.CanvasObject
	HelpContent  fyne.CanvasObject
	OnChanged    func(string, int)
	ApplyFunc    func(int)
}

// BoolConfig holds the configuration for a check setting.
type BoolConfig struct {
	Name         string
	InitialValue bool
	Label        fyne.CanvasObject
	HelpContent  fyne.CanvasObject
	OnChanged    func(bool)
	ApplyFunc    func(bool)
}

// TextEntrySettingConfig holds the configuration for a text entry setting.
type TextEntrySettingConfig struct {
	Name              string
	InitialValue      string
	PlaceHolder       string
	Password          bool
	Label             fyne.CanvasObject
	HelpContent       fyne.CanvasObject
	Validator         fyne.StringValidator
	PostValidateCheck func(string) error
	ApplyFunc         func(string)
}

// ButtonWithConfirmationConfig holds the configuration for a button that asks
// before acting.
type ButtonWithConfirmationConfig struct {
	Name           string
	Label          fyne.CanvasObject
	HelpContent    fyne.CanvasObject
	ButtonText     string
	ConfirmTitle   string
	ConfirmMessage string
	OnPressed      func()
}

// StringOptions converts a slice of fmt.Stringer to a slice of strings.
func StringOptions[T fmt.Stringer](options []T) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		out = append(out, option.String())
	}
	return out
}

// IndexOf returns the position of value in options, or 0 when absent.
func IndexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}

// SettingsManager creates setting widgets and collects pending changes until
// the user applies them.
type SettingsManager interface {
	SettingsHelper

	CreateSelectSetting(cfg *SelectConfig, header *fyne.Container) *widget.Select
	CreateBoolSetting(cfg *BoolConfig, header *fyne.Container) *widget.Check
	CreateTextEntrySetting(cfg *TextEntrySettingConfig, header *fyne.Container) *widget.Entry
	CreateButtonWithConfirmationSetting(cfg *ButtonWithConfirmationConfig, header *fyne.Container)

	GetApplySettingsButton() *widget.Button
	SetSettingChangedCallback(settingName string, callback func())
	RemoveSettingChangedCallback(settingName string)
	RegisterRefreshFunc(refreshFunc func())
	GetSettingsWindow() fyne.Window
}
