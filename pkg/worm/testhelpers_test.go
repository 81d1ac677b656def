package worm

import "os"

func removeOSFile(path string) error {
	return os.Remove(path)
}

func writeTestFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
