package fs

import "os"

// Stat returns a FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func Stat(name string) (os.FileInfo, error) {
	return os.Stat(fixpath(name))
}

// Mkdir creates a new directory with the specified name and permission bits.
// If there is an error, it will be of type *PathError.
func Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fixpath(name), perm)
}

// MkdirAll creates a directory named path, along with any necessary parents,
// and returns nil, or else returns an error. The permission bits perm are used
// for all directories that MkdirAll creates. If path is already a directory,
// MkdirAll does nothing and returns nil.
func MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(fixpath(path), perm)
}

// Open opens a file for reading.
func Open(name string) (*os.File, error) {
	return os.Open(fixpath(name))
}

// OpenFile is the generalized open call; most users will use Open instead.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(fixpath(name), flag, perm)
}

// Rename renames (moves) oldpath to newpath. If newpath already exists and is
// not a directory, Rename replaces it.
func Rename(oldpath, newpath string) error {
	return os.Rename(fixpath(oldpath), fixpath(newpath))
}

// Remove removes the named file or directory.
// If there is an error, it will be of type *PathError.
func Remove(name string) error {
	return os.Remove(fixpath(name))
}

// RemoveAll removes path and any children it contains.
// It removes everything it can but returns the first error
// it encounters. If the path does not exist, RemoveAll
// returns nil (no error).
func RemoveAll(path string) error {
	return os.RemoveAll(fixpath(path))
}

// RemoveIfExists removes path and any children it contains, returning no
// error if the path does not exist.
func RemoveIfExists(path string) error {
	err := os.RemoveAll(fixpath(path))
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return err
}

// DirExists reports whether name exists and is a directory.
func DirExists(name string) bool {
	fi, err := os.Stat(fixpath(name))
	return err == nil && fi.IsDir()
}

// TempFile creates a new temporary file in the directory dir with a name
// beginning with prefix, opened for reading and writing.
func TempFile(dir, prefix string) (*os.File, error) {
	return os.CreateTemp(fixpath(dir), prefix)
}
