package chunkwriter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"meetscribe/internal/fileutil"
)

// DefaultMaxBytes keeps each published document small enough for hosted
// repository search to index it.
const DefaultMaxBytes = 345 * 1000

// ChunkPath returns the path of chunk index for basePath: "dir/stem.md" becomes
// "dir/stem_<index>.md".
func ChunkPath(basePath string, index int) string {
	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, ext)
	return stem + "_" + strconv.Itoa(index) + ext
}

// Split partitions lines into chunks. Each chunk starts counting at the header
// size, takes lines (plus a newline each) until the running count reaches
// maxBytes, and always takes at least one line. Empty input yields one empty
// chunk so the header is still published.
func Split(header string, lines []string, maxBytes int) [][]string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	chunks := make([][]string, 0, 1)
	rest := lines
	for {
		count := len(header)
		n := 0
		for n < len(rest) {
			count += len(rest[n]) + 1
			n++
			if count >= maxBytes {
				break
			}
		}
		chunks = append(chunks, rest[:n])
		rest = rest[n:]
		if len(rest) == 0 {
			return chunks
		}
	}
}

// Write splits lines into size-bounded files derived from basePath, each
// beginning with header, and returns the written paths in index order. Files
// are staged under temporary names and published last-to-first so chunk 0
// only appears once the whole set is on disk.
func Write(basePath, header string, lines []string, maxBytes int) ([]string, error) {
	chunks := Split(header, lines, maxBytes)
	staged := make([]string, 0, len(chunks))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, chunk := range chunks {
		tmp, err := writeChunk(ChunkPath(basePath, len(staged)), header, chunk)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, tmp)
	}

	paths := make([]string, len(staged))
	for i := len(staged) - 1; i >= 0; i-- {
		paths[i] = ChunkPath(basePath, i)
		if err := fileutil.Publish(staged[i], paths[i]); err != nil {
			cleanup()
			return nil, err
		}
	}
	return paths, nil
}

func writeChunk(dst, header string, lines []string) (string, error) {
	file, err := fileutil.CreateTemp(dst)
	if err != nil {
		return "", fmt.Errorf("create chunk %s: %w", filepath.Base(dst), err)
	}
	w := bufio.NewWriter(file)
	_, err = w.WriteString(header)
	for _, line := range lines {
		if err != nil {
			break
		}
		if _, err = w.WriteString(line); err == nil {
			err = w.WriteByte('\n')
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("write chunk %s: %w", filepath.Base(dst), err)
	}
	return file.Name(), nil
}
