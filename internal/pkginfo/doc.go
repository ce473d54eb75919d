// Package pkginfo defines the uniform record returned for a mobile application
// package (Android APK, iOS IPA), the closed set of package formats, and the
// Extractor interface implemented by each format-specific reader.
package pkginfo
