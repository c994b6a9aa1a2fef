// Package archive unpacks zip, gzip-tar and bzip2-tar archives and packs
// gzip-tar and bzip2-tar archives.
//
// Unpack requires the archive to hold exactly one top-level directory and
// returns its path. Extracted directories are always traversable and extracted
// files always readable and writable by the owner.
//
// Failures caused by the archive or the requested paths are *PackError values
// and match one of the Err* sentinels with errors.Is. Caller mistakes match
// ErrInvalidArgument. Everything else is an environment failure wrapped with
// context.
package archive
