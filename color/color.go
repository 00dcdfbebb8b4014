// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package color provides ANSI coloring for terminal output.
package color

import (
	"fmt"

	"github.com/vsrinivas/compilestats/isatty"
)

const (
	escape = "\033["
	clear  = escape + "0m"
)

// ColorCode is an ANSI foreground color code.
type ColorCode int

const (
	BlackFg   ColorCode = 30
	RedFg     ColorCode = 31
	GreenFg   ColorCode = 32
	YellowFg  ColorCode = 33
	BlueFg    ColorCode = 34
	MagentaFg ColorCode = 35
	CyanFg    ColorCode = 36
	WhiteFg   ColorCode = 37
	DefaultFg ColorCode = 39
)

// Colorfn formats its arguments in a particular color.
type Colorfn func(format string, a ...any) string

// Color provides functions for rendering text in each supported color, where
// rendering may be a no-op depending on how the Color was constructed.
type Color interface {
	Black(format string, a ...any) string
	Red(format string, a ...any) string
	Green(format string, a ...any) string
	Yellow(format string, a ...any) string
	Blue(format string, a ...any) string
	Magenta(format string, a ...any) string
	Cyan(format string, a ...any) string
	White(format string, a ...any) string
	DefaultColor(format string, a ...any) string
	WithColor(code ColorCode, format string, a ...any) string
	Enabled() bool
}

// EnableColor says when color should be used; it implements flag.Value so it
// can be set with a -color flag.
type EnableColor int

const (
	ColorNever EnableColor = iota
	ColorAuto
	ColorAlways
)

func (ec *EnableColor) String() string {
	switch *ec {
	case ColorNever:
		return "never"
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	}
	return "unknown"
}

func (ec *EnableColor) Set(s string) error {
	switch s {
	case "never":
		*ec = ColorNever
	case "auto":
		*ec = ColorAuto
	case "always":
		*ec = ColorAlways
	default:
		return fmt.Errorf("%s is not a valid color value; can be never, auto or always", s)
	}
	return nil
}

// NewColor returns a Color. With ColorAuto, color is enabled only when stdout
// is a terminal.
func NewColor(ec EnableColor) Color {
	enabled := ec == ColorAlways || (ec == ColorAuto && isatty.IsTerminal())
	if enabled {
		return enabledColor{}
	}
	return disabledColor{}
}

type enabledColor struct{}

func (enabledColor) WithColor(code ColorCode, format string, a ...any) string {
	s := fmt.Sprintf(format, a...)
	if code == DefaultFg {
		return s
	}
	return fmt.Sprintf("%v%vm%v%v", escape, code, s, clear)
}

func (c enabledColor) Black(f string, a ...any) string   { return c.WithColor(BlackFg, f, a...) }
func (c enabledColor) Red(f string, a ...any) string     { return c.WithColor(RedFg, f, a...) }
func (c enabledColor) Green(f string, a ...any) string   { return c.WithColor(GreenFg, f, a...) }
func (c enabledColor) Yellow(f string, a ...any) string  { return c.WithColor(YellowFg, f, a...) }
func (c enabledColor) Blue(f string, a ...any) string    { return c.WithColor(BlueFg, f, a...) }
func (c enabledColor) Magenta(f string, a ...any) string { return c.WithColor(MagentaFg, f, a...) }
func (c enabledColor) Cyan(f string, a ...any) string    { return c.WithColor(CyanFg, f, a...) }
func (c enabledColor) White(f string, a ...any) string   { return c.WithColor(WhiteFg, f, a...) }
func (c enabledColor) DefaultColor(f string, a ...any) string {
	return c.WithColor(DefaultFg, f, a...)
}
func (enabledColor) Enabled() bool { return true }

type disabledColor struct{}

func (disabledColor) WithColor(_ ColorCode, format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}

func (c disabledColor) Black(f string, a ...any) string        { return c.WithColor(BlackFg, f, a...) }
func (c disabledColor) Red(f string, a ...any) string          { return c.WithColor(RedFg, f, a...) }
func (c disabledColor) Green(f string, a ...any) string        { return c.WithColor(GreenFg, f, a...) }
func (c disabledColor) Yellow(f string, a ...any) string       { return c.WithColor(YellowFg, f, a...) }
func (c disabledColor) Blue(f string, a ...any) string         { return c.WithColor(BlueFg, f, a...) }
func (c disabledColor) Magenta(f string, a ...any) string      { return c.WithColor(MagentaFg, f, a...) }
func (c disabledColor) Cyan(f string, a ...any) string         { return c.WithColor(CyanFg, f, a...) }
func (c disabledColor) White(f string, a ...any) string        { return c.WithColor(WhiteFg, f, a...) }
func (c disabledColor) DefaultColor(f string, a ...any) string { return c.WithColor(DefaultFg, f, a...) }
func (disabledColor) Enabled() bool                            { return false }
