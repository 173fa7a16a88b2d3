package collector

import "os"

// Hooks used for testing (overridable)
var (
	stat     = os.Stat
	readFile = os.ReadFile
	readDir  = readDirUnsorted
)

// readDirUnsorted lists a directory in the order the filesystem returns it.
// os.ReadDir would sort by name.
func readDirUnsorted(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}
