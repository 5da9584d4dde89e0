// Package ui layout constants for consistent spacing and dimensions.
package ui

// Layout constants for viewport and panel sizing.
const (
	HeaderHeight = 3
	FooterHeight = 2
	InputHeight  = 3

	SidebarWidth   = 34
	ChatPanelWidth = 44

	PanelBorderWidth = 2
	PanelPaddingH    = 1

	MinimumTerminalWidth  = 80
	MinimumTerminalHeight = 20
)

// ContentHeight returns the vertical space left for the main content
// area once the header, footer, and input row are placed.
func ContentHeight(totalHeight int) int {
	h := totalHeight - HeaderHeight - FooterHeight - InputHeight
	if h < 1 {
		return 1
	}
	return h
}

// ViewerWidth returns the width of the center viewer given which side
// panels are visible.
func ViewerWidth(totalWidth int, chatPanelOpen bool) int {
	w := totalWidth - SidebarWidth
	if chatPanelOpen {
		w -= ChatPanelWidth
	}
	if w < 20 {
		return 20
	}
	return w
}

// PanelContentWidth returns the content width inside a bordered panel.
func PanelContentWidth(panelWidth int) int {
	return panelWidth - PanelBorderWidth - PanelPaddingH*2
}
