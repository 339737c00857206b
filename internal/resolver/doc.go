// Package resolver locates the version of an extension to load. It walks the
// {root}/{extension}/Compiled/{version}/ directory convention, keeps the
// subdirectories whose names parse as versions, and picks the highest one.
// It also enumerates every installed extension for the list command.
package resolver
