package cli

import (
	"fmt"
	"os"
)

const (
	Reset  = "\033[0m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
)

// disableColor is a cached check for the environment variable
var disableColor = checkNoColor()

func checkNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// Enabled reports whether ANSI colors are emitted.
func Enabled() bool {
	return !disableColor
}

// Style wraps text in a specific color code
func Style(text string, colorCode string) string {
	if disableColor {
		return text
	}
	return fmt.Sprintf("%s%s%s", colorCode, text, Reset)
}

func CheckMark() string {
	return Style("✔", Green)
}

func CrossMark() string {
	return Style("✘", Red)
}

func WarningSign() string {
	return Style("⚠", Yellow)
}
