// @focus: #terminal { ansi }
package terminal

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	csiSGR0  = []byte("\x1b[0m")
	csiClear = []byte("\x1b[2J")
	csiHome  = []byte("\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")

	// Attributes
	csiAttrBold = []byte("\x1b[1m")

	// Color prefixes
	csiFg256 = []byte("\x1b[38;5;") // followed by N;m
	csiBg256 = []byte("\x1b[48;5;") // followed by N;m
	csiFgRGB = []byte("\x1b[38;2;") // followed by R;G;B;m
)

// Home is the cursor-to-origin sequence emitted before each frame
func Home() []byte {
	return csiHome
}

// appendInt appends a non-negative decimal; sequences are pre-built so this stays off the frame path
func appendInt(dst []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n >= 10 {
		dst = appendInt(dst, n/10)
	}
	return append(dst, byte(n%10)+'0')
}

// AppendFg256 appends a 256-palette foreground sequence
func AppendFg256(dst []byte, index uint8) []byte {
	dst = append(dst, csiFg256...)
	dst = appendInt(dst, int(index))
	return append(dst, 'm')
}

// AppendBg256 appends a 256-palette background sequence
func AppendBg256(dst []byte, index uint8) []byte {
	dst = append(dst, csiBg256...)
	dst = appendInt(dst, int(index))
	return append(dst, 'm')
}

// AppendFgRGB appends a 24-bit foreground sequence
func AppendFgRGB(dst []byte, c RGB) []byte {
	dst = append(dst, csiFgRGB...)
	dst = appendInt(dst, int(c.R))
	dst = append(dst, ';')
	dst = appendInt(dst, int(c.G))
	dst = append(dst, ';')
	dst = appendInt(dst, int(c.B))
	return append(dst, 'm')
}

// AppendFg appends the foreground sequence for a palette index in the given mode
func AppendFg(dst []byte, index uint8, mode ColorMode) []byte {
	if mode == ColorModeTrueColor {
		return AppendFgRGB(dst, Palette256RGB(index))
	}
	return AppendFg256(dst, index)
}
