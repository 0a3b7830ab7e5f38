package codec

import "os"

// writeTempFile stages content to a new temp file matching pattern and
// returns its path. The DOCX library reads and writes by path, so
// in-memory bytes are staged here rather than threading io.Reader
// support the library doesn't expose.
func writeTempFile(pattern string, content []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// tempFilePath reserves a temp file path matching pattern without
// writing to it — used for a library call that writes the file itself.
func tempFilePath(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

func removeTempFile(path string) {
	_ = os.Remove(path)
}
