package models

// Recognized UI themes.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Settings holds per-user application settings. Settings and saved
// projects are the only state that survives across sessions; wizard
// step, loading flags, errors and notifications are transient.
type Settings struct {
	Theme            string `json:"theme"`
	Language         string `json:"language"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
	DebugMode        bool   `json:"debugMode"`
	AutoSave         bool   `json:"autoSave"`
	ShowTutorial     bool   `json:"showTutorial"`
}

// DefaultSettings returns the settings applied to users who have never
// saved any.
func DefaultSettings() *Settings {
	return &Settings{
		Theme:        ThemeSystem,
		Language:     "en-US",
		AutoSave:     true,
		ShowTutorial: true,
	}
}
