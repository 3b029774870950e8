package datachat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg int // User message accent
	Error   int // Error notices
	Success int // Success indicators
	Muted   int // Status bar, placeholders, code gutters
	Accent  int // Headings, links
	Diagram int // Diagram box borders
	Notice  int // Recoverable notices ("no response received")
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
		Diagram: 6,
		Notice:  3,
	}
}
