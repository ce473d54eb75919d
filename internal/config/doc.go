// Package config loads appver settings from .appver.yaml (or the file named
// by APPVER_CONFIG) and validates them.
package config
