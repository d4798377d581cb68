package types

// DesktopResult is the single JSON document printed by the desktop bridge.
// Which optional fields are set depends on the requested action.
type DesktopResult struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Image      string `json:"image,omitempty"` // base64 encoded JPEG
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	Message    string `json:"message,omitempty"`
	ScreenSize []int  `json:"screen_size,omitempty"`
}

// MissingDependency is printed when the automation backend is not available
// at all. It deliberately has no success field, matching what hosts already
// parse for this case.
type MissingDependency struct {
	Error string `json:"error"`
	Hint  string `json:"hint"`
}
