package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
)

// colorizeUi colors output by message kind, mirroring the CLI's own
// color-scheme wrapper.
type colorizeUi struct {
	Colorize    *colorstring.Colorize
	OutputColor string
	ErrorColor  string
	WarnColor   string
	Ui          cli.Ui
}

func (u *colorizeUi) Ask(query string) (string, error)       { return u.Ui.Ask(query) }
func (u *colorizeUi) AskSecret(query string) (string, error) { return u.Ui.AskSecret(query) }

func (u *colorizeUi) Output(message string) {
	u.Ui.Output(u.colorize(message, u.OutputColor))
}

func (u *colorizeUi) Info(message string) {
	u.Ui.Info(message)
}

func (u *colorizeUi) Error(message string) {
	u.Ui.Error(u.colorize(message, u.ErrorColor))
}

func (u *colorizeUi) Warn(message string) {
	u.Ui.Warn(u.colorize(message, u.WarnColor))
}

func (u *colorizeUi) colorize(message, color string) string {
	if color == "" {
		return message
	}
	return u.Colorize.Color(fmt.Sprintf("%s%s[reset]", color, message))
}

func newUi() cli.Ui {
	basic := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	return &colorizeUi{
		Colorize: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: os.Getenv("NO_COLOR") != "",
			Reset:   true,
		},
		OutputColor: "",
		ErrorColor:  "[red]",
		WarnColor:   "[yellow]",
		Ui:          basic,
	}
}
