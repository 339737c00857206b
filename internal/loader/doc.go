// Package loader opens the module files of a resolved version directory and
// instantiates the extensions they register.
//
// Module files are dispatched to an Opener by file extension: compiled Go
// plugins (.so) and Lua scripts (.lua) are supported out of the box, and
// tests substitute a StaticOpener. Failures are isolated per file and per
// registration, so one broken module never hides the healthy ones next to
// it.
package loader
