package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/PanCrop/pkg/ui/setting"
)

// SettingsManager builds preference widgets. Edits are held as pending
// callbacks until Apply Changes is pressed.
type SettingsManager struct {
	pending      map[string]func()
	refreshFuncs []func()
	applyButton  *widget.Button
	prefsWindow  fyne.Window
}

// NewSettingsManager creates a new SettingsManager.
func NewSettingsManager(window fyne.Window) *SettingsManager {
	sm := &SettingsManager{
		pending:     make(map[string]func()),
		prefsWindow: window,
	}
	sm.applyButton = widget.NewButton("Apply Changes", sm.apply)
	sm.applyButton.Disable()
	return sm
}

func (sm *SettingsManager) apply() {
	for _, callback := range sm.pending {
		callback()
	}
	sm.pending = make(map[string]func())
	for _, rf := range sm.refreshFuncs {
		rf()
	}
	sm.checkAndEnableApply()
}

func (sm *SettingsManager) checkAndEnableApply() {
	if len(sm.pending) > 0 {
		sm.applyButton.Enable()
	} else {
		sm.applyButton.Disable()
	}
}

// GetApplySettingsButton returns the Apply Changes button.
func (sm *SettingsManager) GetApplySettingsButton() *widget.Button {
	return sm.applyButton
}

// CreateSelectSetting creates a select row.
func (sm *SettingsManager) CreateSelectSetting(cfg *setting.SelectConfig, header *fyne.Container) *widget.Select {
	selectWidget := widget.NewSelect(cfg.Options, nil)
	selectWidget.SetSelectedIndex(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, selectWidget, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	selectWidget.OnChanged = func(s string) {
		selectedIndex := selectWidget.SelectedIndex()
		if selectedIndex != cfg.InitialValue {
			sm.SetSettingChangedCallback(cfg.Name, func() {
				cfg.ApplyFunc(selectedIndex)
				cfg.InitialValue = selectedIndex
			})
		} else {
			sm.RemoveSettingChangedCallback(cfg.Name)
		}
		if cfg.OnChanged != nil {
			cfg.OnChanged(s, selectedIndex)
		}
	}
	return selectWidget
}

// CreateBoolSetting creates a check row.
func (sm *SettingsManager) CreateBoolSetting(cfg *setting.BoolConfig, header *fyne.Container) *widget.Check {
	check := widget.NewCheck("", nil)
	check.SetChecked(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, check, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	check.OnChanged = func(b bool) {
		if b != cfg.InitialValue {
			sm.SetSettingChangedCallback(cfg.Name, func() {
				cfg.ApplyFunc(b)
				cfg.InitialValue = b
			})
		} else {
			sm.RemoveSettingChangedCallback(cfg.Name)
		}
		if cfg.OnChanged != nil {
			cfg.OnChanged(b)
		}
	}
	return check
}

// CreateTextEntrySetting creates an entry row with a status label. Invalid
// input withdraws the pending change.
func (sm *SettingsManager) CreateTextEntrySetting(cfg *setting.TextEntrySettingConfig, header *fyne.Container) *widget.Entry {
	entry := widget.NewEntry()
	if cfg.Password {
		entry = widget.NewPasswordEntry()
	}
	entry.SetPlaceHolder(cfg.PlaceHolder)
	entry.SetText(cfg.InitialValue)
	if cfg.Validator != nil {
		entry.Validator = cfg.Validator
	}

	statusLabel := widget.NewLabel("")

	header.Add(NewSplitRow(cfg.Label, entry, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(NewSplitRowWithAlignment(cfg.HelpContent, statusLabel, SplitProportion.TwoThirds, SplitAlign.Opposed))
	} else {
		header.Add(NewSplitRow(widget.NewLabel(""), statusLabel, SplitProportion.TwoThirds))
	}

	fail := func(err error) {
		statusLabel.SetText(err.Error())
		statusLabel.Importance = widget.DangerImportance
		sm.RemoveSettingChangedCallback(cfg.Name)
	}

	entry.OnChanged = func(s string) {
		defer statusLabel.Refresh()
		if cfg.Validator != nil {
			if err := entry.Validate(); err != nil {
				fail(err)
				return
			}
		}
		if cfg.PostValidateCheck != nil {
			if err := cfg.PostValidateCheck(s); err != nil {
				fail(err)
				return
			}
		}

		statusLabel.SetText(fmt.Sprintf("%s OK", cfg.Name))
		statusLabel.Importance = widget.SuccessImportance
		if s == cfg.InitialValue {
			sm.RemoveSettingChangedCallback(cfg.Name)
			return
		}
		sm.SetSettingChangedCallback(cfg.Name, func() {
			cfg.ApplyFunc(entry.Text)
			cfg.InitialValue = entry.Text
		})
	}
	return entry
}

// CreateButtonWithConfirmationSetting creates a button row that confirms
// before running OnPressed.
func (sm *SettingsManager) CreateButtonWithConfirmationSetting(cfg *setting.ButtonWithConfirmationConfig, header *fyne.Container) {
	button := widget.NewButton(cfg.ButtonText, func() {
		if cfg.ConfirmTitle != "" && cfg.ConfirmMessage != "" && sm.prefsWindow != nil {
			dialog.ShowConfirm(cfg.ConfirmTitle, cfg.ConfirmMessage, func(b bool) {
				if b {
					cfg.OnPressed()
				}
			}, sm.prefsWindow)
			return
		}
		cfg.OnPressed()
	})

	if cfg.Label != nil {
		header.Add(NewSplitRow(cfg.Label, button, SplitProportion.OneThird))
	} else {
		header.Add(button)
	}
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}
}

// SetSettingChangedCallback records a pending change.
func (sm *SettingsManager) SetSettingChangedCallback(settingName string, callback func()) {
	sm.pending[settingName] = callback
	sm.checkAndEnableApply()
}

// RemoveSettingChangedCallback withdraws a pending change.
func (sm *SettingsManager) RemoveSettingChangedCallback(settingName string) {
	delete(sm.pending, settingName)
	sm.checkAndEnableApply()
}

// RegisterRefreshFunc registers a function run after every apply.
func (sm *SettingsManager) RegisterRefreshFunc(refreshFunc func()) {
	sm.refreshFuncs = append(sm.refreshFuncs, refreshFunc)
}

// GetSettingsWindow returns the preferences window.
func (sm *SettingsManager) GetSettingsWindow() fyne.Window {
	return sm.prefsWindow
}

// CreateSectionTitleLabel creates a label for a section title
func (sm *SettingsManager) CreateSectionTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.HighImportance
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// CreateSettingTitleLabel creates a label for a setting title
func (sm *SettingsManager) CreateSettingTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// CreateSettingDescriptionLabel creates a label for a setting description
func (sm *SettingsManager) CreateSettingDescriptionLabel(desc string) fyne.CanvasObject {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.LowImportance
	label.TextStyle = fyne.TextStyle{Italic: true}
	return label
}

var _ setting.SettingsManager = (*SettingsManager)(nil)
