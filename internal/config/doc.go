// Package config holds the transfer options record and the two ways it is
// filled: fyne preferences for the desktop app and viper for the CLI.
package config
