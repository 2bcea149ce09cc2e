package storage

import "os"

func chmodWritable(p string) error {
	return os.Chmod(p, 0o644)
}

func writeFile(p string, d []byte) error {
	return os.WriteFile(p, d, 0o644)
}
